package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/models"
)

type LogHandler struct {
	Store *config.Store
}

// List returns audit entries newest first. Optional ?limit=N caps the
// result.
func (h *LogHandler) List(c *gin.Context) {
	doc, err := h.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read data"})
		return
	}

	limit := len(doc.Logs)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative number"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	out := make([]models.LogEntry, 0, limit)
	for i := len(doc.Logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, doc.Logs[i])
	}
	c.JSON(http.StatusOK, out)
}
