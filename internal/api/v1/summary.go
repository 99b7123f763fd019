package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"locoboard/internal/dashboard"
	"locoboard/internal/model"
	"locoboard/internal/report"
)

func summaryQuery(c *gin.Context) dashboard.SummaryQuery {
	return dashboard.SummaryQuery{
		FY:      c.Query("fy"),
		GroupBy: c.Query("groupBy"),
		View:    c.Query("view"),
		Fleet:   c.Query("fleet"),
		Status:  c.Query("status"),
	}
}

// respondTable writes t as counts, or with member records when members=true.
func respondTable(c *gin.Context, t report.SummaryTable) {
	if boolQuery(c, "members") {
		c.JSON(http.StatusOK, t)
		return
	}
	c.JSON(http.StatusOK, t.Counts())
}

// ListFiscalYears returns the financial years present in the failure data.
// GET /api/fiscal-years
func (h *Handler) ListFiscalYears(c *gin.Context) {
	years, err := h.svc.FiscalYears(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if years == nil {
		years = []model.FinancialYear{}
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// ListFailures returns failure records.
// GET /api/failures?fy=&fleet=&q=
func (h *Handler) ListFailures(c *gin.Context) {
	items, err := h.svc.ListFailures(c.Request.Context(), dashboard.FailureFilter{
		FY:    c.Query("fy"),
		Fleet: c.Query("fleet"),
		Query: c.Query("q"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []model.FailureRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// ListFailureSheets reports how each failure sheet was read.
// GET /api/failure-sheets
func (h *Handler) ListFailureSheets(c *gin.Context) {
	items, err := h.svc.FailureSheets(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []dashboard.FailureSheet{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetSummary returns one summary table.
// GET /api/summary?fy=&groupBy=&view=&fleet=&status=
func (h *Handler) GetSummary(c *gin.Context) {
	t, err := h.svc.Summary(c.Request.Context(), summaryQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondTable(c, t)
}

// GetCombined returns the Loco Account, Others and merged tables.
// GET /api/summary/combined?fy=&groupBy=&fleet=
func (h *Handler) GetCombined(c *gin.Context) {
	tables, err := h.svc.Combined(c.Request.Context(), summaryQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if boolQuery(c, "members") {
		c.JSON(http.StatusOK, gin.H{"tables": tables})
		return
	}
	counts := make([]report.CountTable, 0, len(tables))
	for _, t := range tables {
		counts = append(counts, t.Counts())
	}
	c.JSON(http.StatusOK, gin.H{"tables": counts})
}

// GetSubsystems returns the subsystem classification view.
// GET /api/summary/subsystems?fy=&fleet=
func (h *Handler) GetSubsystems(c *gin.Context) {
	t, err := h.svc.Subsystems(c.Request.Context(), c.Query("fy"), c.Query("fleet"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondTable(c, t)
}

// GetCell returns the records behind one summary cell. row=grand selects the
// grand-total row; otherwise key names the row.
// GET /api/summary/cell?fy=&groupBy=&view=&key=&row=&month=
func (h *Handler) GetCell(c *gin.Context) {
	ref := dashboard.CellRef{Key: c.Query("key"), Month: c.Query("month")}
	switch c.Query("row") {
	case "":
	case "grand":
		ref.Grand = true
	default:
		h.fail(c, &dashboard.QueryError{Param: "row", Message: strconv.Quote(c.Query("row")) + " is not a row selector"})
		return
	}
	if ref.Key == "" && !ref.Grand {
		h.fail(c, &dashboard.QueryError{Param: "key", Message: "required"})
		return
	}
	cell, err := h.svc.Cell(c.Request.Context(), summaryQuery(c), ref)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cell.Members == nil {
		cell.Members = []model.FailureRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"key":     ref.Key,
		"grand":   ref.Grand,
		"month":   ref.Month,
		"count":   cell.Count,
		"members": cell.Members,
	})
}

// GetTrend returns the monthly failure counts of one view.
// GET /api/summary/trend?fy=&view=&fleet=&status=
func (h *Handler) GetTrend(c *gin.Context) {
	tr, err := h.svc.Trend(c.Request.Context(), summaryQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}
