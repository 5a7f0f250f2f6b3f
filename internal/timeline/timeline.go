package timeline

import (
	"fmt"
	"sort"
	"time"

	"decor-agenda-backend/internal/model"
	"decor-agenda-backend/internal/urgency"
)

// Item is one appointment on the timeline together with its human-relative
// date label. The label is presentation only; grouping and ordering depend
// solely on the event date.
type Item struct {
	Appointment model.Appointment `json:"appointment"`
	Label       string            `json:"label"`
}

// Group is one month of the timeline, keyed "YYYY-MM".
type Group struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`
}

// GroupByMonth organizes appointments into month groups sorted ascending by
// key, each group sorted ascending by event date with the incoming relative
// order preserved among equal dates.
func GroupByMonth(appointments []model.Appointment, now time.Time) []Group {
	byKey := make(map[string][]Item)
	for _, a := range appointments {
		key := a.EventDate.Format("2006-01")
		byKey[key] = append(byKey[key], Item{Appointment: a, Label: RelativeLabel(a.EventDate, now)})
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		items := byKey[k]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Appointment.EventDate.Before(items[j].Appointment.EventDate)
		})
		groups = append(groups, Group{Key: k, Items: items})
	}
	return groups
}

// RelativeLabel renders the calendar distance between now and an event
// date: "today", "tomorrow", "in N days" up to a week out, the weekday name
// beyond that, and "past" for anything already behind us.
func RelativeLabel(eventDate, now time.Time) string {
	days := urgency.DaysUntil(now, eventDate)
	switch {
	case days < 0:
		return "past"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days <= 7:
		return fmt.Sprintf("in %d days", days)
	}
	return eventDate.Weekday().String()
}
