package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"locoboard/internal/model"
)

const defaultLogLimit = 50

// ListFetchLogs returns recent sheet fetches, newest first.
// GET /api/logs/fetches?sheet=&limit=
func (h *Handler) ListFetchLogs(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultLogLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	items := []model.FetchLog{}
	if h.logs != nil {
		items, err = h.logs.RecentFetchLogs(c.Request.Context(), c.Query("sheet"), limit)
		if err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListEditLogs returns recent amendments, newest first.
// GET /api/logs/edits?loco=&limit=
func (h *Handler) ListEditLogs(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultLogLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	items := []model.EditLog{}
	if h.logs != nil {
		items, err = h.logs.RecentEditLogs(c.Request.Context(), c.Query("loco"), limit)
		if err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
