package urgency

import (
	"sort"
	"time"

	"decor-agenda-backend/internal/model"
)

// Bucket is the temporal-proximity class of an appointment. It drives both
// the dashboard badges and the notification feed.
type Bucket string

const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketUpcoming Bucket = "upcoming"
	BucketReminder Bucket = "reminder"
)

// The dashboard quick view only looks 3 days ahead; the notification feed
// widens the same classification to 7 days. The two consumers use different
// horizons on purpose.
const (
	DashboardHorizonDays = 3
	FeedHorizonDays      = 7
)

// Priority orders buckets for display: today first, reminder last.
func (b Bucket) Priority() int {
	switch b {
	case BucketToday:
		return 0
	case BucketTomorrow:
		return 1
	case BucketUpcoming:
		return 2
	case BucketReminder:
		return 3
	}
	return 4
}

// Classify maps an appointment to its urgency bucket relative to now.
// Cancelled and completed appointments never classify, regardless of date.
// Within horizonDays: same day is today, the next day tomorrow, up to 3
// days out upcoming, and anything further (when the horizon allows) a
// reminder. Past dates and dates beyond the horizon yield no bucket.
func Classify(a model.Appointment, now time.Time, horizonDays int) (Bucket, bool) {
	if a.Status == model.StatusCancelled || a.Status == model.StatusCompleted {
		return "", false
	}

	days := DaysUntil(now, a.EventDate)
	switch {
	case days == 0:
		return BucketToday, true
	case days == 1:
		return BucketTomorrow, true
	case days > 1 && days <= DashboardHorizonDays:
		return BucketUpcoming, true
	case days > DashboardHorizonDays && days <= horizonDays:
		return BucketReminder, true
	}
	return "", false
}

// DaysUntil returns the whole-calendar-day distance from now to the given
// date. Negative for past dates. Time-of-day and zone offsets are ignored:
// only the calendar date each argument displays in its own location counts.
func DaysUntil(now, date time.Time) int {
	from := DateOnly(now)
	to := DateOnly(date)
	return int(to.Sub(from).Hours() / 24)
}

// DateOnly projects t's calendar date onto midnight UTC. Event dates are
// stored as UTC midnights while the clock may run in the business-local
// zone; putting both on the same midnight grid keeps day arithmetic a pure
// calendar comparison instead of a distance between instants.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortByBucket orders appointments by bucket priority, keeping the original
// relative order within each bucket. Appointments that do not classify sort
// after everything else, also in stable order.
func SortByBucket(appointments []model.Appointment, now time.Time, horizonDays int) {
	sort.SliceStable(appointments, func(i, j int) bool {
		pi, pj := 5, 5
		if b, ok := Classify(appointments[i], now, horizonDays); ok {
			pi = b.Priority()
		}
		if b, ok := Classify(appointments[j], now, horizonDays); ok {
			pj = b.Priority()
		}
		return pi < pj
	})
}
