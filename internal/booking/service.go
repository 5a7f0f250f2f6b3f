package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"decor-agenda-backend/internal/feed"
	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/recurrence"
	"decor-agenda-backend/internal/stats"
	"decor-agenda-backend/internal/store"
	"decor-agenda-backend/internal/timeline"
)

// Validation errors surfaced to the API layer.
var (
	ErrClientNameRequired   = errors.New("client name is required")
	ErrEventDateRequired    = errors.New("event date is required")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidRecurrence    = errors.New("invalid recurrence type")
	ErrRecurrenceEndMissing = errors.New("recurrence end date is required when a recurrence type is set")
	ErrNegativeValue        = errors.New("estimated value cannot be negative")
)

// IsValidationError reports whether err is a rejected-input error, as
// opposed to a storage failure.
func IsValidationError(err error) bool {
	for _, e := range []error{
		ErrClientNameRequired,
		ErrEventDateRequired,
		ErrInvalidStatus,
		ErrInvalidRecurrence,
		ErrRecurrenceEndMissing,
		ErrNegativeValue,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// RecurrenceInsertError reports that the base appointment was stored but
// the batch insert of its generated occurrences failed. The base is not
// rolled back; callers get its id so they can retry just the series or tell
// the operator.
type RecurrenceInsertError struct {
	BaseID      string
	Occurrences int
	Err         error
}

func (e *RecurrenceInsertError) Error() string {
	return fmt.Sprintf("appointment %s was created but inserting its %d occurrences failed: %v", e.BaseID, e.Occurrences, e.Err)
}

func (e *RecurrenceInsertError) Unwrap() error { return e.Err }

// Overview is the read model exposed to the admin UI: everything on it is
// recomputed from the current appointment snapshot on each call.
type Overview struct {
	Stats                stats.Stats      `json:"stats"`
	Notifications        []feed.Entry     `json:"notifications"`
	UnreadCount          int              `json:"unread_count"`
	NotificationsEnabled bool             `json:"notifications_enabled"`
	Timeline             []timeline.Group `json:"timeline"`
}

// Service wires the store, the pure scheduling computations, and the
// per-tenant notification feeds together.
type Service struct {
	store     store.Store
	feeds     *feed.Manager
	weekStart time.Weekday
	interval  time.Duration
	enabled   bool
	now       func() time.Time
}

// NewService creates the booking service. loc is the business-local
// calendar: the service clock runs in it, so day buckets, week windows, and
// timeline labels all follow one deployment-wide calendar regardless of the
// host zone. interval and enabled control the periodic recompute pass
// started by Run.
func NewService(s store.Store, feeds *feed.Manager, weekStart time.Weekday, loc *time.Location, interval time.Duration, enabled bool) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     s,
		feeds:     feeds,
		weekStart: weekStart,
		interval:  interval,
		enabled:   enabled,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// CreateAppointment validates and persists a base appointment and, when a
// recurrence rule is present, expands and stores the whole series. The
// returned slice holds the generated occurrences (empty without a rule).
func (s *Service) CreateAppointment(ctx context.Context, base *model.Appointment) ([]model.Appointment, error) {
	if err := validate(base); err != nil {
		return nil, err
	}

	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.Status == "" {
		base.Status = model.StatusPending
	}
	base.ParentAppointmentID = nil

	if err := s.store.CreateAppointment(ctx, base); err != nil {
		return nil, err
	}

	var occurrences []model.Appointment
	if base.RecurrenceType != model.RecurrenceNone {
		occurrences = recurrence.Expand(*base, recurrence.Rule{
			Type:    base.RecurrenceType,
			EndDate: *base.RecurrenceEndDate,
		})
		if err := s.store.InsertOccurrences(ctx, occurrences); err != nil {
			// The base is already stored and stays stored; report the
			// partial failure distinctly so the caller can retry the series.
			return nil, &RecurrenceInsertError{BaseID: base.ID, Occurrences: len(occurrences), Err: err}
		}
	}

	s.refreshFeed(ctx, base.TenantID)
	return occurrences, nil
}

// UpdateAppointment applies a partial update and refreshes the tenant feed.
func (s *Service) UpdateAppointment(ctx context.Context, tenantID, id string, fields map[string]any) error {
	if status, ok := fields["status"]; ok {
		if st, isStatus := status.(model.Status); !isStatus || !st.Valid() {
			return ErrInvalidStatus
		}
	}
	if err := s.store.UpdateAppointment(ctx, tenantID, id, fields); err != nil {
		return err
	}
	s.refreshFeed(ctx, tenantID)
	return nil
}

// DeleteAppointment removes one appointment and refreshes the tenant feed.
func (s *Service) DeleteAppointment(ctx context.Context, tenantID, id string) error {
	if err := s.store.DeleteAppointment(ctx, tenantID, id); err != nil {
		return err
	}
	s.refreshFeed(ctx, tenantID)
	return nil
}

// Overview recomputes the full read model from the current snapshot.
func (s *Service) Overview(ctx context.Context, tenantID string) (*Overview, error) {
	appointments, err := s.store.ListAppointments(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	f := s.feeds.Feed(tenantID)
	f.Reseed(ctx, appointments, now)

	return &Overview{
		Stats:                stats.Aggregate(appointments, now, s.weekStart),
		Notifications:        f.Entries(),
		UnreadCount:          f.UnreadCount(),
		NotificationsEnabled: f.Enabled(),
		Timeline:             timeline.GroupByMonth(appointments, now),
	}, nil
}

// Notifications returns the tenant's current feed entries after a reseed.
func (s *Service) Notifications(ctx context.Context, tenantID string) ([]feed.Entry, int, error) {
	appointments, err := s.store.ListAppointments(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	f := s.feeds.Feed(tenantID)
	f.Reseed(ctx, appointments, s.now())
	return f.Entries(), f.UnreadCount(), nil
}

// MarkNotificationRead flags one feed entry as read.
func (s *Service) MarkNotificationRead(tenantID, id string) bool {
	return s.feeds.Feed(tenantID).MarkRead(id)
}

// MarkAllNotificationsRead flags every entry in the tenant's feed as read.
func (s *Service) MarkAllNotificationsRead(tenantID string) {
	s.feeds.Feed(tenantID).MarkAllRead()
}

// SetNotificationPreference toggles push delivery for a tenant. The result
// is the effective preference, which stays disabled when the push channel
// denies permission.
func (s *Service) SetNotificationPreference(ctx context.Context, tenantID string, enabled bool) (bool, error) {
	return s.feeds.Feed(tenantID).SetPreference(ctx, enabled)
}

// Run starts the periodic per-tenant recompute pass. Each tick is read-only
// against the store: it reseeds every tenant's feed from the live snapshot,
// which also queues push jobs for entries that newly entered the window.
func (s *Service) Run(ctx context.Context) {
	if !s.enabled {
		log.Println("Feed scheduler is disabled. Not starting.")
		return
	}
	log.Println("Starting feed scheduler...")

	s.RefreshAll(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Feed scheduler shutting down.")
			return
		case <-timer.C:
			s.RefreshAll(ctx)
			timer.Reset(s.interval)
		}
	}
}

// RefreshAll reseeds the feed of every tenant that owns appointments.
func (s *Service) RefreshAll(ctx context.Context) {
	tenantIDs, err := s.store.ListTenantIDs(ctx)
	if err != nil {
		log.Printf("Error listing tenants for feed refresh: %v", err)
		return
	}
	for _, tenantID := range tenantIDs {
		s.refreshFeed(ctx, tenantID)
	}
}

func (s *Service) refreshFeed(ctx context.Context, tenantID string) {
	appointments, err := s.store.ListAppointments(ctx, tenantID)
	if err != nil {
		log.Printf("Error refreshing feed for tenant %s: %v", tenantID, err)
		return
	}
	s.feeds.Feed(tenantID).Reseed(ctx, appointments, s.now())
}

func validate(a *model.Appointment) error {
	if a.ClientName == "" {
		return ErrClientNameRequired
	}
	if a.EventDate.IsZero() {
		return ErrEventDateRequired
	}
	if a.Status != "" && !a.Status.Valid() {
		return ErrInvalidStatus
	}
	if a.EstimatedValue < 0 {
		return ErrNegativeValue
	}
	if !a.RecurrenceType.Valid() {
		return ErrInvalidRecurrence
	}
	if a.RecurrenceType != model.RecurrenceNone && a.RecurrenceEndDate == nil {
		return ErrRecurrenceEndMissing
	}
	return nil
}
