package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"locoboard/internal/editor"
)

// EditFailure forwards one amendment to the edit endpoint. A saved value
// whose audit entry failed is still a 200, with status "partial".
// POST /api/failures/edit
func (h *Handler) EditFailure(c *gin.Context) {
	var req editor.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body: " + err.Error()})
		return
	}

	res, err := h.editor.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := "success"
	if res.Partial() {
		status = "partial"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"requestId": res.RequestID,
		"message":   res.Message,
		"logged":    res.Logged,
	})
}
