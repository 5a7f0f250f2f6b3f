package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"decor-agenda-backend/internal/booking"
	"decor-agenda-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	booking *booking.Service
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *booking.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		booking: svc,
		webpush: webpushOptions,
	}
}
