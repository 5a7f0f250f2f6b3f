package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetOverview handles GET /api/tenants/{tenant_id}/overview. The whole read
// model is recomputed from the current appointment snapshot on every fetch.
func (h *Handler) GetOverview(c *gin.Context) {
	overview, err := h.booking.Overview(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build overview"})
		return
	}
	c.JSON(http.StatusOK, overview)
}
