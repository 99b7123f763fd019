package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultSearchLimit = 20

// SearchLocos returns locomotive ids matching q.
// GET /api/locos?q=&limit=
func (h *Handler) SearchLocos(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultSearchLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	idx, err := h.svc.LocoIDs(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	var ids []string
	if q == "" {
		ids = idx.IDs()
		if limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
	} else {
		ids = idx.Search(q, limit)
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids, "total": idx.Len()})
}

// GetLoco returns every record joined to one locomotive.
// GET /api/locos/:id
func (h *Handler) GetLoco(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing locomotive id"})
		return
	}
	data, ok, err := h.svc.LocoData(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "locomotive not found", "id": id})
		return
	}
	c.JSON(http.StatusOK, data)
}
