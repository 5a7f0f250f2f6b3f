package recurrence

import (
	"time"

	"github.com/google/uuid"

	"decor-agenda-backend/internal/model"
)

// Rule describes how a base appointment repeats. EndDate is the last
// calendar date an occurrence may fall on (inclusive).
type Rule struct {
	Type    model.RecurrenceType
	EndDate time.Time
}

// Expand generates the child occurrences for a base appointment. Starting
// from the base event date it repeatedly advances by the rule's step
// (weekly +7d, biweekly +14d, monthly +1 calendar month with Go's
// normalizing AddDate semantics) and emits a copy of the base for every
// advanced date at or before EndDate. The base itself is never part of the
// output; persisting it is the caller's job.
//
// Copies get a fresh ID, the advanced date, and ParentAppointmentID set to
// the base; their own recurrence fields are cleared so occurrences can
// never chain. An EndDate before the first step yields an empty slice,
// which is the intended no-op for past or too-tight end dates.
func Expand(base model.Appointment, rule Rule) []model.Appointment {
	switch rule.Type {
	case model.RecurrenceWeekly, model.RecurrenceBiweekly, model.RecurrenceMonthly:
	default:
		return nil
	}

	end := dateOnly(rule.EndDate)
	var out []model.Appointment
	for cur := advance(dateOnly(base.EventDate), rule.Type); !cur.After(end); cur = advance(cur, rule.Type) {
		child := base
		child.ID = uuid.NewString()
		child.EventDate = cur
		child.RecurrenceType = model.RecurrenceNone
		child.RecurrenceEndDate = nil
		parentID := base.ID
		child.ParentAppointmentID = &parentID
		child.CreatedAt = time.Time{}
		child.UpdatedAt = time.Time{}
		out = append(out, child)
	}
	return out
}

func advance(d time.Time, t model.RecurrenceType) time.Time {
	switch t {
	case model.RecurrenceWeekly:
		return d.AddDate(0, 0, 7)
	case model.RecurrenceBiweekly:
		return d.AddDate(0, 0, 14)
	default: // monthly
		return d.AddDate(0, 1, 0)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
