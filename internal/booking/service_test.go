package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"decor-agenda-backend/internal/feed"
	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/store"
	"decor-agenda-backend/internal/urgency"
)

var now = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, store.Store) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.Appointment{}, &model.PushSubscription{}))

	s := store.NewGormStore(db)
	svc := NewService(s, feed.NewManager(urgency.FeedHorizonDays, nil), time.Sunday, time.UTC, time.Minute, false)
	svc.now = func() time.Time { return now }
	return svc, s
}

// failingOccurrenceStore wraps a real store and fails the batch insert, to
// exercise the partial-failure path after the base is already stored.
type failingOccurrenceStore struct {
	store.Store
}

func (f *failingOccurrenceStore) InsertOccurrences(ctx context.Context, occurrences []model.Appointment) error {
	return errors.New("connection reset")
}

func TestServiceClockRunsInConfiguredLocation(t *testing.T) {
	svc, _ := newTestService(t)

	west := time.FixedZone("UTC-3", -3*60*60)
	svc = NewService(svc.store, feed.NewManager(urgency.FeedHorizonDays, nil), time.Sunday, west, time.Minute, false)
	assert.Equal(t, west, svc.now().Location())

	// A nil location falls back to UTC rather than the host zone.
	svc = NewService(svc.store, feed.NewManager(urgency.FeedHorizonDays, nil), time.Sunday, nil, time.Minute, false)
	assert.Equal(t, time.UTC, svc.now().Location())
}

func TestCreateAppointmentWithoutRecurrence(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	base := &model.Appointment{
		TenantID:   "tenant-a",
		ClientName: "Mariana",
		EventDate:  date(2024, time.June, 20),
	}
	occurrences, err := svc.CreateAppointment(ctx, base)
	require.NoError(t, err)
	assert.Empty(t, occurrences)
	assert.NotEmpty(t, base.ID, "an id is assigned at creation")
	assert.Equal(t, model.StatusPending, base.Status, "status defaults to pending")

	appts, err := s.ListAppointments(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, appts, 1)
}

func TestCreateAppointmentExpandsRecurrence(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	end := date(2024, time.July, 1)
	base := &model.Appointment{
		TenantID:          "tenant-a",
		ClientName:        "Mariana",
		EventDate:         date(2024, time.June, 10),
		RecurrenceType:    model.RecurrenceWeekly,
		RecurrenceEndDate: &end,
	}
	occurrences, err := svc.CreateAppointment(ctx, base)
	require.NoError(t, err)
	require.Len(t, occurrences, 3) // Jun 17, Jun 24, Jul 1

	appts, err := s.ListAppointments(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, appts, 4, "base plus the whole series is persisted")

	children := 0
	for _, a := range appts {
		if a.IsOccurrence() {
			children++
			assert.Equal(t, base.ID, *a.ParentAppointmentID)
			assert.Equal(t, model.RecurrenceNone, a.RecurrenceType)
			assert.Nil(t, a.RecurrenceEndDate)
		}
	}
	assert.Equal(t, 3, children)
}

func TestCreateAppointmentPastEndDateIsNoOp(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	end := date(2024, time.June, 10) // equal to the base date
	base := &model.Appointment{
		TenantID:          "tenant-a",
		ClientName:        "Mariana",
		EventDate:         date(2024, time.June, 10),
		RecurrenceType:    model.RecurrenceWeekly,
		RecurrenceEndDate: &end,
	}
	occurrences, err := svc.CreateAppointment(ctx, base)
	require.NoError(t, err, "an empty expansion is a no-op, not a failure")
	assert.Empty(t, occurrences)

	appts, err := s.ListAppointments(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestCreateAppointmentRecurrenceInsertFailure(t *testing.T) {
	svc, s := newTestService(t)
	svc.store = &failingOccurrenceStore{Store: s}
	ctx := context.Background()

	end := date(2024, time.July, 1)
	base := &model.Appointment{
		TenantID:          "tenant-a",
		ClientName:        "Mariana",
		EventDate:         date(2024, time.June, 10),
		RecurrenceType:    model.RecurrenceWeekly,
		RecurrenceEndDate: &end,
	}
	_, err := svc.CreateAppointment(ctx, base)
	require.Error(t, err)

	var rie *RecurrenceInsertError
	require.ErrorAs(t, err, &rie)
	assert.Equal(t, base.ID, rie.BaseID, "the error carries the stored base id")
	assert.Equal(t, 3, rie.Occurrences)

	// The base survives the failed series insert.
	appts, listErr := s.ListAppointments(ctx, "tenant-a")
	require.NoError(t, listErr)
	require.Len(t, appts, 1)
	assert.Equal(t, base.ID, appts[0].ID)
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAppointment(ctx, &model.Appointment{TenantID: "t", EventDate: now})
	assert.ErrorIs(t, err, ErrClientNameRequired)

	_, err = svc.CreateAppointment(ctx, &model.Appointment{TenantID: "t", ClientName: "Ana"})
	assert.ErrorIs(t, err, ErrEventDateRequired)

	_, err = svc.CreateAppointment(ctx, &model.Appointment{TenantID: "t", ClientName: "Ana", EventDate: now, Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.CreateAppointment(ctx, &model.Appointment{TenantID: "t", ClientName: "Ana", EventDate: now, EstimatedValue: -1})
	assert.ErrorIs(t, err, ErrNegativeValue)

	_, err = svc.CreateAppointment(ctx, &model.Appointment{TenantID: "t", ClientName: "Ana", EventDate: now, RecurrenceType: "daily"})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	_, err = svc.CreateAppointment(ctx, &model.Appointment{TenantID: "t", ClientName: "Ana", EventDate: now, RecurrenceType: model.RecurrenceWeekly})
	assert.ErrorIs(t, err, ErrRecurrenceEndMissing)
}

func TestOverviewReadModel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []model.Appointment{
		{TenantID: "tenant-a", ClientName: "Ana", EventDate: date(2024, time.June, 10), Status: model.StatusConfirmed, EstimatedValue: 800},
		{TenantID: "tenant-a", ClientName: "Bruno", EventDate: date(2024, time.June, 11), Status: model.StatusPending, EstimatedValue: 300},
		{TenantID: "tenant-a", ClientName: "Clara", EventDate: date(2024, time.July, 2), Status: model.StatusPending},
		{TenantID: "tenant-a", ClientName: "Davi", EventDate: date(2024, time.June, 12), Status: model.StatusCancelled, EstimatedValue: 500},
	}
	for i := range seed {
		_, err := svc.CreateAppointment(ctx, &seed[i])
		require.NoError(t, err)
	}

	ov, err := svc.Overview(ctx, "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, 4, ov.Stats.Total)
	assert.Equal(t, 2, ov.Stats.Pending)
	assert.Equal(t, 1, ov.Stats.Confirmed)
	assert.Equal(t, 800.0, ov.Stats.Revenue)
	assert.Equal(t, 2, ov.Stats.ThisWeek)

	// Ana today, Bruno tomorrow; Clara is beyond the 7-day feed horizon and
	// Davi is cancelled.
	require.Len(t, ov.Notifications, 2)
	assert.Equal(t, urgency.BucketToday, ov.Notifications[0].Bucket)
	assert.Equal(t, urgency.BucketTomorrow, ov.Notifications[1].Bucket)
	assert.Equal(t, 2, ov.UnreadCount)
	assert.False(t, ov.NotificationsEnabled)

	// June and July groups, ascending.
	require.Len(t, ov.Timeline, 2)
	assert.Equal(t, "2024-06", ov.Timeline[0].Key)
	assert.Equal(t, "2024-07", ov.Timeline[1].Key)
	assert.Equal(t, "today", ov.Timeline[0].Items[0].Label)
}

func TestMarkReadSurvivesOverviewRecompute(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAppointment(ctx, &model.Appointment{
		TenantID: "tenant-a", ClientName: "Ana", EventDate: date(2024, time.June, 10),
	})
	require.NoError(t, err)

	ov, err := svc.Overview(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, ov.Notifications, 1)
	id := ov.Notifications[0].ID

	require.True(t, svc.MarkNotificationRead("tenant-a", id))

	ov, err = svc.Overview(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, ov.Notifications, 1)
	assert.True(t, ov.Notifications[0].Read, "read state survives recomputation")
	assert.Equal(t, 0, ov.UnreadCount)
}

func TestUpdateAndDeleteRefreshFeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := &model.Appointment{TenantID: "tenant-a", ClientName: "Ana", EventDate: date(2024, time.June, 10)}
	_, err := svc.CreateAppointment(ctx, a)
	require.NoError(t, err)

	entries, unread, err := svc.Notifications(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, unread)

	// Cancelling drops the entry from the feed.
	require.NoError(t, svc.UpdateAppointment(ctx, "tenant-a", a.ID, map[string]any{"status": model.StatusCancelled}))
	entries, unread, err = svc.Notifications(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, unread)

	require.NoError(t, svc.DeleteAppointment(ctx, "tenant-a", a.ID))
	assert.ErrorIs(t, svc.DeleteAppointment(ctx, "tenant-a", a.ID), store.ErrNotFound)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := &model.Appointment{TenantID: "tenant-a", ClientName: "Ana", EventDate: date(2024, time.June, 10)}
	_, err := svc.CreateAppointment(ctx, a)
	require.NoError(t, err)

	err = svc.UpdateAppointment(ctx, "tenant-a", a.ID, map[string]any{"status": model.Status("archived")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
