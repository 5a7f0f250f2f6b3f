package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"decor-agenda-backend/internal/model"
)

// ErrNotFound is returned when an update or delete targets an appointment
// that does not exist within the tenant's scope.
var ErrNotFound = errors.New("appointment not found")

// Store defines the interface for all database operations. Every
// appointment operation is scoped by tenant id; there is no cross-tenant
// visibility.
type Store interface {
	ListAppointments(ctx context.Context, tenantID string) ([]model.Appointment, error)
	ListTenantIDs(ctx context.Context) ([]string, error)
	CreateAppointment(ctx context.Context, appointment *model.Appointment) error
	InsertOccurrences(ctx context.Context, occurrences []model.Appointment) error
	UpdateAppointment(ctx context.Context, tenantID, id string, fields map[string]any) error
	DeleteAppointment(ctx context.Context, tenantID, id string) error

	ListSubscriptions(ctx context.Context, tenantID string) ([]model.PushSubscription, error)
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, tenantID, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ListAppointments returns every appointment of one tenant, ordered by
// event date so downstream consumers get a deterministic snapshot.
func (s *gormStore) ListAppointments(ctx context.Context, tenantID string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("event_date ASC, created_at ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for tenant %s: %w", tenantID, err)
	}
	return appts, nil
}

// ListTenantIDs returns the distinct tenants that currently own
// appointments. Used by the periodic feed recompute pass.
func (s *gormStore) ListTenantIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Distinct("tenant_id").
		Order("tenant_id ASC").
		Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant ids: %w", err)
	}
	return ids, nil
}

// CreateAppointment persists a single appointment.
func (s *gormStore) CreateAppointment(ctx context.Context, appointment *model.Appointment) error {
	if err := s.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// InsertOccurrences stores a batch of generated occurrences as a single
// logical unit: either all of them land or none do. Partial state is never
// left observable.
func (s *gormStore) InsertOccurrences(ctx context.Context, occurrences []model.Appointment) error {
	if len(occurrences) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&occurrences).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d occurrences: %w", len(occurrences), err)
	}
	return nil
}

// UpdateAppointment applies a partial update to one appointment within the
// tenant's scope.
func (s *gormStore) UpdateAppointment(ctx context.Context, tenantID, id string, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update appointment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAppointment removes one appointment within the tenant's scope.
// Occurrences reference their base weakly, so deleting a base leaves its
// generated occurrences in place.
func (s *gormStore) DeleteAppointment(ctx context.Context, tenantID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Appointment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscriptions returns the push subscriptions of one tenant.
func (s *gormStore) ListSubscriptions(ctx context.Context, tenantID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for tenant %s: %w", tenantID, err)
	}
	return subs, nil
}

// SaveSubscription upserts a subscription keyed by endpoint.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"tenant_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes a subscription within the tenant's scope.
func (s *gormStore) DeleteSubscription(ctx context.Context, tenantID, endpoint string) error {
	err := s.db.WithContext(ctx).
		Where("endpoint = ? AND tenant_id = ?", endpoint, tenantID).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", endpoint, err)
	}
	return nil
}
