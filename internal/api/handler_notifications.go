package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNotifications handles GET /api/tenants/{tenant_id}/notifications.
func (h *Handler) GetNotifications(c *gin.Context) {
	entries, unread, err := h.booking.Notifications(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": entries,
		"unread_count":  unread,
	})
}

type markReadRequest struct {
	ID string `json:"id" binding:"required"`
}

// MarkNotificationRead handles POST /api/tenants/{tenant_id}/notifications/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.booking.MarkNotificationRead(c.Param("tenant_id"), req.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/tenants/{tenant_id}/notifications/read_all.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	h.booking.MarkAllNotificationsRead(c.Param("tenant_id"))
	c.Status(http.StatusNoContent)
}

type preferenceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetNotificationPreference handles PUT /api/tenants/{tenant_id}/notifications/preference.
// Enabling asks the push channel for permission; when it is denied the
// preference stays disabled and the response reports the effective value,
// never an error.
func (h *Handler) SetNotificationPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enabled, err := h.booking.SetNotificationPreference(c.Request.Context(), c.Param("tenant_id"), *req.Enabled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}
