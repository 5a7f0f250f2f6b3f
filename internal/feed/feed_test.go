package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/urgency"
)

var now = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

// mockChannel is a scriptable PushChannel, in the spirit of the sender mock
// used by the notification worker tests.
type mockChannel struct {
	mu         sync.Mutex
	granted    bool
	requestErr error
	notified   []string
}

func (m *mockChannel) RequestPermission(ctx context.Context) (bool, error) {
	return m.granted, m.requestErr
}

func (m *mockChannel) Notify(ctx context.Context, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, title+": "+body)
	return nil
}

func (m *mockChannel) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.notified))
	copy(out, m.notified)
	return out
}

func appts() []model.Appointment {
	return []model.Appointment{
		{ID: "a1", ClientName: "Ana", Status: model.StatusPending, EventDate: now},
		{ID: "a2", ClientName: "Bruno", Status: model.StatusConfirmed, EventDate: now.AddDate(0, 0, 1)},
		{ID: "a3", ClientName: "Clara", Status: model.StatusPending, EventDate: now.AddDate(0, 0, 5)},
		{ID: "a4", ClientName: "Davi", Status: model.StatusCancelled, EventDate: now},
		{ID: "a5", ClientName: "Elisa", Status: model.StatusPending, EventDate: now.AddDate(0, 0, 30)},
	}
}

func TestReseedClassifiesAndOrders(t *testing.T) {
	f := New("tenant-a", urgency.FeedHorizonDays, nil)
	f.Reseed(context.Background(), appts(), now)

	entries := f.Entries()
	require.Len(t, entries, 3, "cancelled and far-future appointments stay out")
	assert.Equal(t, urgency.BucketToday, entries[0].Bucket)
	assert.Equal(t, urgency.BucketTomorrow, entries[1].Bucket)
	assert.Equal(t, urgency.BucketReminder, entries[2].Bucket)
	assert.Equal(t, "today-a1", entries[0].ID)
	assert.Equal(t, 3, f.UnreadCount())
}

func TestReseedIdempotentKeepsReadFlags(t *testing.T) {
	f := New("tenant-a", urgency.FeedHorizonDays, nil)
	f.Reseed(context.Background(), appts(), now)

	require.True(t, f.MarkRead("today-a1"))
	assert.Equal(t, 2, f.UnreadCount())

	// Recomputing from an unchanged snapshot must not reset read state.
	f.Reseed(context.Background(), appts(), now)
	entries := f.Entries()
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Read)
	assert.Equal(t, 2, f.UnreadCount())
}

func TestReseedDropsEntriesLeavingWindow(t *testing.T) {
	f := New("tenant-a", urgency.FeedHorizonDays, nil)
	f.Reseed(context.Background(), appts(), now)
	require.Len(t, f.Entries(), 3)

	// A week later everything has either passed or left the window except
	// the far-future appointment, which now enters it.
	later := now.AddDate(0, 0, 27)
	f.Reseed(context.Background(), appts(), later)

	entries := f.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "a5", entries[0].Appointment.ID)
	assert.False(t, entries[0].Read, "a newly entering appointment gets a fresh unread entry")
}

func TestReseedBucketChangeMakesFreshEntry(t *testing.T) {
	f := New("tenant-a", urgency.FeedHorizonDays, nil)
	one := []model.Appointment{{ID: "a2", ClientName: "Bruno", Status: model.StatusPending, EventDate: now.AddDate(0, 0, 1)}}

	f.Reseed(context.Background(), one, now)
	require.True(t, f.MarkRead("tomorrow-a2"))

	// The next day the same appointment classifies as today: new id, unread.
	f.Reseed(context.Background(), one, now.AddDate(0, 0, 1))
	entries := f.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "today-a2", entries[0].ID)
	assert.False(t, entries[0].Read)
}

func TestMarkAllReadAndUnknownID(t *testing.T) {
	f := New("tenant-a", urgency.FeedHorizonDays, nil)
	f.Reseed(context.Background(), appts(), now)

	assert.False(t, f.MarkRead("today-missing"))

	f.MarkAllRead()
	assert.Equal(t, 0, f.UnreadCount())
	for _, e := range f.Entries() {
		assert.True(t, e.Read)
	}
}

func TestSetPreferencePermissionDeniedReverts(t *testing.T) {
	ch := &mockChannel{granted: false}
	f := New("tenant-a", urgency.FeedHorizonDays, ch)

	enabled, err := f.SetPreference(context.Background(), true)
	assert.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, f.Enabled())

	// The feed keeps populating silently.
	f.Reseed(context.Background(), appts(), now)
	assert.Len(t, f.Entries(), 3)
	assert.Empty(t, ch.sent())
}

func TestSetPreferenceGrantedPushesNewEntries(t *testing.T) {
	ch := &mockChannel{granted: true}
	f := New("tenant-a", urgency.FeedHorizonDays, ch)

	enabled, err := f.SetPreference(context.Background(), true)
	require.NoError(t, err)
	require.True(t, enabled)

	f.Reseed(context.Background(), appts(), now)
	assert.Len(t, ch.sent(), 3)

	// Reseeding the same snapshot pushes nothing new.
	f.Reseed(context.Background(), appts(), now)
	assert.Len(t, ch.sent(), 3)

	// Disabling stops delivery without touching entries.
	enabled, err = f.SetPreference(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, enabled)
	f.Reseed(context.Background(), nil, now)
	f.Reseed(context.Background(), appts(), now)
	assert.Len(t, ch.sent(), 3)
	assert.Len(t, f.Entries(), 3)
}

func TestConcurrentMarkReadDoesNotLoseUpdates(t *testing.T) {
	f := New("tenant-a", urgency.FeedHorizonDays, nil)
	f.Reseed(context.Background(), appts(), now)
	entries := f.Entries()

	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			f.MarkRead(id)
		}(e.ID)
	}
	wg.Wait()

	assert.Equal(t, 0, f.UnreadCount())
}

func TestManagerPartitionsFeedsByTenant(t *testing.T) {
	m := NewManager(urgency.FeedHorizonDays, nil)

	fa := m.Feed("tenant-a")
	fb := m.Feed("tenant-b")
	assert.NotSame(t, fa, fb)
	assert.Same(t, fa, m.Feed("tenant-a"))

	fa.Reseed(context.Background(), appts(), now)
	assert.Len(t, fa.Entries(), 3)
	assert.Empty(t, fb.Entries())
}
