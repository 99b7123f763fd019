package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"locoboard/internal/model"
	"locoboard/internal/store"
)

// FailureSourceStatus describes one configured failure sheet.
type FailureSourceStatus struct {
	Sheet   string `json:"sheet"`
	Fleet   string `json:"fleet"`
	Variant string `json:"variant"`
}

// StatusResponse is the system status.
type StatusResponse struct {
	Configured     bool                  `json:"configured"`   // a spreadsheet id is set
	DetailsSheet   string                `json:"detailsSheet"` // inventory sheet name
	SchedulesSheet string                `json:"schedulesSheet"`
	ModsSheet      string                `json:"modificationsSheet"`
	FailureSources []FailureSourceStatus `json:"failureSources"`
	LocoAccount    []string              `json:"locoAccount"`
	DefaultGroupBy string                `json:"defaultGroupBy"`
	EditEnabled    bool                  `json:"editEnabled"`
	LoadedIDs      int                   `json:"loadedIds"` // -1 until first lookup
	StartedAt      *time.Time            `json:"startedAt,omitempty"`
}

// GetStatus returns the configuration summary.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	src := h.cfg.Source
	resp := StatusResponse{
		Configured:     src.SpreadsheetID != "",
		DetailsSheet:   src.Sheets.Details,
		SchedulesSheet: src.Sheets.Schedules,
		ModsSheet:      src.Sheets.Modifications,
		FailureSources: make([]FailureSourceStatus, 0, len(src.Failures)),
		LocoAccount:    h.cfg.Report.LocoAccount,
		DefaultGroupBy: h.svc.DefaultGroupBy(),
		EditEnabled:    h.editor.Enabled(),
		LoadedIDs:      h.svc.LoadedIDs(),
	}
	for _, f := range src.Failures {
		resp.FailureSources = append(resp.FailureSources, FailureSourceStatus{Sheet: f.Sheet, Fleet: f.Fleet, Variant: f.Variant})
	}
	if h.logs != nil {
		if t, err := h.logs.GetTime(store.SettingLastStartedAt); err == nil && !t.IsZero() {
			resp.StartedAt = &t
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetLabels returns the display labels of the failure columns and of any
// other configured table.
// GET /api/labels
func (h *Handler) GetLabels(c *gin.Context) {
	keys := append([]string{model.FieldFleet, model.FieldSubsystem}, model.CanonicalFields...)
	failures := make(map[string]string, len(keys))
	for _, key := range keys {
		failures[key] = h.labels.Label(model.TableFailures, key)
	}
	columns := map[string]map[string]string{string(model.TableFailures): failures}
	for table, cols := range h.labels.Columns {
		if table != string(model.TableFailures) {
			columns[table] = cols
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"columns":             columns,
		"subsystemCategories": h.svc.SubsystemCategories(),
	})
}
