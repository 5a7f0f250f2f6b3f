package stats

import (
	"time"

	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/urgency"
)

// Stats is the dashboard summary for one tenant's appointment set.
type Stats struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Confirmed int     `json:"confirmed"`
	ThisWeek  int     `json:"this_week"`
	ThisMonth int     `json:"this_month"`
	Revenue   float64 `json:"revenue"`
}

// Aggregate computes counts and revenue over a tenant's appointments.
//
// ThisWeek and ThisMonth only count appointments that are not cancelled and
// whose event date is today or later, restricted to the current calendar
// week (boundaries set by weekStart) and calendar month. Revenue sums the
// estimated value of confirmed and completed appointments; pending and
// cancelled ones never contribute, whatever their date. Total over any
// input, including an empty slice.
func Aggregate(appointments []model.Appointment, now time.Time, weekStart time.Weekday) Stats {
	today := urgency.DateOnly(now)
	weekFrom := startOfWeek(today, weekStart)
	weekTo := weekFrom.AddDate(0, 0, 7)
	monthFrom := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	monthTo := monthFrom.AddDate(0, 1, 0)

	var s Stats
	for _, a := range appointments {
		s.Total++

		switch a.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusConfirmed:
			s.Confirmed++
		}

		if a.Status == model.StatusConfirmed || a.Status == model.StatusCompleted {
			s.Revenue += a.EstimatedValue
		}

		d := urgency.DateOnly(a.EventDate)
		if a.Status == model.StatusCancelled || d.Before(today) {
			continue
		}
		if !d.Before(weekFrom) && d.Before(weekTo) {
			s.ThisWeek++
		}
		if !d.Before(monthFrom) && d.Before(monthTo) {
			s.ThisMonth++
		}
	}
	return s
}

// startOfWeek walks back from day to the most recent weekStart (inclusive).
func startOfWeek(day time.Time, weekStart time.Weekday) time.Time {
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}
