package v1

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"locoboard/internal/dashboard"
	"locoboard/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportRequest selects the tables of a workbook. With no views the workbook
// holds the Loco Account, Others and merged tables.
type ExportRequest struct {
	FY         string   `json:"fy"`
	GroupBy    string   `json:"groupBy"`
	Fleet      string   `json:"fleet"`
	Status     string   `json:"status"`
	Views      []string `json:"views"`
	Subsystems bool     `json:"subsystems"`
}

// Export builds a summary workbook and returns a one-time download token.
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	tables, err := h.svc.Workbook(c.Request.Context(), dashboard.WorkbookQuery{
		FY:         req.FY,
		GroupBy:    req.GroupBy,
		Fleet:      req.Fleet,
		Status:     req.Status,
		Views:      req.Views,
		Subsystems: req.Subsystems,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, tables...); err != nil {
		h.fail(c, fmt.Errorf("build workbook: %w", err))
		return
	}

	name := exportFileName(req.FY, req.Fleet)
	token := h.downloads.put(name, buf.Bytes(), exportTTL)
	h.logger.Info("export built", "fy", req.FY, "tables", len(tables), "bytes", buf.Len())

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"fileName":    name,
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport serves a built workbook once.
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}
	c.Header("Content-Disposition", buildContentDisposition(item.fileName))
	c.Data(http.StatusOK, xlsxContentType, item.data)
}

func exportFileName(fy, fleet string) string {
	name := "failure-summary-" + strings.TrimSpace(fy)
	if f := strings.TrimSpace(fleet); f != "" {
		name += "-" + f
	}
	return name + ".xlsx"
}

func buildContentDisposition(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
}
