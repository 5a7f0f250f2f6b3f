package feed

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/urgency"
)

// PushChannel is the outbound side effect a feed may trigger. Delivery is
// advisory: a failing or denied channel never affects the feed's contents.
type PushChannel interface {
	// RequestPermission asks the channel whether pushes can be delivered
	// for this tenant. A false result is a denial, not an error.
	RequestPermission(ctx context.Context) (bool, error)
	Notify(ctx context.Context, title, body string) error
}

// Entry is one notification in a tenant's feed. The ID is deterministic
// (bucket plus appointment id), so recomputation finds existing entries
// again and their read state survives.
type Entry struct {
	ID          string            `json:"id"`
	Bucket      urgency.Bucket    `json:"bucket"`
	Appointment model.Appointment `json:"appointment"`
	Read        bool              `json:"read"`
}

// EntryID derives the stable feed id for an appointment in a bucket.
func EntryID(bucket urgency.Bucket, appointmentID string) string {
	return fmt.Sprintf("%s-%s", bucket, appointmentID)
}

// Feed is the session-local notification state for one tenant: the current
// entries, their read flags, and the push delivery preference. Nothing here
// is persisted; the entry list is always recomputed from the live
// appointment snapshot and only the read flags and the preference carry
// over between reseeds.
type Feed struct {
	mu      sync.Mutex
	tenant  string
	horizon int
	channel PushChannel
	enabled bool
	entries []Entry
}

// New creates an empty feed for a tenant. The channel may be nil, in which
// case the delivery preference can never be enabled.
func New(tenantID string, horizonDays int, channel PushChannel) *Feed {
	return &Feed{tenant: tenantID, horizon: horizonDays, channel: channel}
}

// Reseed recomputes the feed from the current appointment snapshot.
// Entries whose id already exists keep their read flag; appointments that
// newly enter the classification window get fresh unread entries; entries
// whose appointment left the window are dropped. Reseeding an unchanged
// snapshot is a no-op on read state. When the delivery preference is
// enabled, each newly appearing entry is pushed through the channel.
func (f *Feed) Reseed(ctx context.Context, appointments []model.Appointment, now time.Time) {
	f.mu.Lock()

	prev := make(map[string]bool, len(f.entries))
	for _, e := range f.entries {
		prev[e.ID] = e.Read
	}

	next := make([]Entry, 0, len(appointments))
	var added []Entry
	for _, a := range appointments {
		bucket, ok := urgency.Classify(a, now, f.horizon)
		if !ok {
			continue
		}
		e := Entry{ID: EntryID(bucket, a.ID), Bucket: bucket, Appointment: a}
		if read, seen := prev[e.ID]; seen {
			e.Read = read
		} else {
			added = append(added, e)
		}
		next = append(next, e)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Bucket.Priority() < next[j].Bucket.Priority()
	})
	f.entries = next

	push := f.enabled && f.channel != nil
	f.mu.Unlock()

	if !push {
		return
	}
	for _, e := range added {
		if err := f.channel.Notify(ctx, pushTitle(e.Bucket), pushBody(e.Appointment)); err != nil {
			log.Printf("Error pushing notification %s for tenant %s: %v", e.ID, f.tenant, err)
		}
	}
}

// Entries returns a copy of the current entries in display order.
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// UnreadCount is always derived from the entry list, never tracked
// separately, so it cannot drift out of sync.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if !e.Read {
			n++
		}
	}
	return n
}

// MarkRead flags one entry as read. Returns false when the id is unknown.
func (f *Feed) MarkRead(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every current entry as read.
func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		f.entries[i].Read = true
	}
}

// Enabled reports the current delivery preference.
func (f *Feed) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// SetPreference toggles push delivery. Enabling asks the channel for
// permission first; a denial leaves the preference disabled and is reported
// through the return value, not as an error. The feed itself keeps
// populating either way.
func (f *Feed) SetPreference(ctx context.Context, enabled bool) (bool, error) {
	if !enabled {
		f.mu.Lock()
		f.enabled = false
		f.mu.Unlock()
		return false, nil
	}

	if f.channel == nil {
		return false, nil
	}
	granted, err := f.channel.RequestPermission(ctx)
	if err != nil {
		return false, err
	}
	if !granted {
		log.Printf("Push permission denied for tenant %s; feed stays in silent mode", f.tenant)
		return false, nil
	}

	f.mu.Lock()
	f.enabled = true
	f.mu.Unlock()
	return true, nil
}

func pushTitle(b urgency.Bucket) string {
	switch b {
	case urgency.BucketToday:
		return "Event today"
	case urgency.BucketTomorrow:
		return "Event tomorrow"
	case urgency.BucketUpcoming:
		return "Event coming up"
	default:
		return "Event reminder"
	}
}

func pushBody(a model.Appointment) string {
	body := fmt.Sprintf("%s on %s", a.ClientName, a.EventDate.Format("2006-01-02"))
	if a.EventTime != "" {
		body += " at " + a.EventTime
	}
	if a.Location != "" {
		body += ", " + a.Location
	}
	return body
}
