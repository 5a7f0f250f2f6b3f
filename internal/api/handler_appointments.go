package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"decor-agenda-backend/internal/booking"
	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/parse"
	"decor-agenda-backend/internal/store"
)

type createAppointmentRequest struct {
	ClientName     string  `json:"client_name" binding:"required"`
	ClientPhone    string  `json:"client_phone"`
	EventDate      string  `json:"event_date" binding:"required"`
	EventTime      string  `json:"event_time"`
	EventType      string  `json:"event_type"`
	Location       string  `json:"location"`
	Notes          string  `json:"notes"`
	Status         string  `json:"status"`
	EstimatedValue float64 `json:"estimated_value"`

	RecurrenceType    string `json:"recurrence_type"`
	RecurrenceEndDate string `json:"recurrence_end_date"`
}

// CreateAppointment handles POST /api/tenants/{tenant_id}/appointments.
// When a recurrence rule is present the whole series is generated and
// stored in the same request.
func (h *Handler) CreateAppointment(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventDate, err := parse.Date(req.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eventTime, err := parse.TimeOfDay(req.EventTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appointment := model.Appointment{
		TenantID:       tenantID,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		EventDate:      eventDate,
		EventTime:      eventTime,
		EventType:      req.EventType,
		Location:       req.Location,
		Notes:          req.Notes,
		Status:         model.Status(req.Status),
		EstimatedValue: req.EstimatedValue,
		RecurrenceType: model.RecurrenceType(req.RecurrenceType),
	}
	if req.RecurrenceEndDate != "" {
		end, err := parse.Date(req.RecurrenceEndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		appointment.RecurrenceEndDate = &end
	}

	occurrences, err := h.booking.CreateAppointment(c.Request.Context(), &appointment)
	if err != nil {
		var rie *booking.RecurrenceInsertError
		switch {
		case errors.As(err, &rie):
			// The base appointment was stored; the series was not. The
			// caller gets the base id so it can retry just the series.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "recurrence insert failed",
				"base_id": rie.BaseID,
			})
		case booking.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": appointment,
		"occurrences": len(occurrences),
	})
}

type updateAppointmentRequest struct {
	ClientName     *string  `json:"client_name"`
	ClientPhone    *string  `json:"client_phone"`
	EventDate      *string  `json:"event_date"`
	EventTime      *string  `json:"event_time"`
	EventType      *string  `json:"event_type"`
	Location       *string  `json:"location"`
	Notes          *string  `json:"notes"`
	Status         *string  `json:"status"`
	EstimatedValue *float64 `json:"estimated_value"`
}

// UpdateAppointment handles PATCH /api/tenants/{tenant_id}/appointments/{id}.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	id := c.Param("id")

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := make(map[string]any)
	if req.ClientName != nil {
		fields["client_name"] = *req.ClientName
	}
	if req.ClientPhone != nil {
		fields["client_phone"] = *req.ClientPhone
	}
	if req.EventDate != nil {
		d, err := parse.Date(*req.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fields["event_date"] = d
	}
	if req.EventTime != nil {
		tod, err := parse.TimeOfDay(*req.EventTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fields["event_time"] = tod
	}
	if req.EventType != nil {
		fields["event_type"] = *req.EventType
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Status != nil {
		fields["status"] = model.Status(*req.Status)
	}
	if req.EstimatedValue != nil {
		fields["estimated_value"] = *req.EstimatedValue
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.booking.UpdateAppointment(c.Request.Context(), tenantID, id, fields); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		case errors.Is(err, booking.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAppointment handles DELETE /api/tenants/{tenant_id}/appointments/{id}.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	id := c.Param("id")

	if err := h.booking.DeleteAppointment(c.Request.Context(), tenantID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
