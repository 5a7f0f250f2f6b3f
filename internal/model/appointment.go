package model

import "time"

// Status is the workflow state of an appointment. Transitions are
// unconstrained: any status may be set from any other. Consumers branch on
// specific values (revenue counts confirmed+completed, urgency skips
// cancelled+completed), never on transition history.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// RecurrenceType is the repetition rule carried by a base appointment.
// The empty string means no recurrence.
type RecurrenceType string

const (
	RecurrenceNone     RecurrenceType = ""
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceBiweekly RecurrenceType = "biweekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
)

// Valid reports whether t is a recognized recurrence rule (none included).
func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Appointment is a single booking owned by one tenant. A base appointment
// may carry a recurrence rule; generated occurrences reference the base via
// ParentAppointmentID and never carry a rule themselves (recurrence is
// single-level, not chained).
type Appointment struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	TenantID    string `gorm:"index;size:64;not null" json:"tenant_id"`
	ClientName  string `gorm:"size:256;not null" json:"client_name"`
	ClientPhone string `gorm:"size:32" json:"client_phone,omitempty"`

	EventDate time.Time `gorm:"not null;index" json:"event_date"`
	EventTime string    `gorm:"size:8" json:"event_time,omitempty"` // "15:04", empty when unset
	EventType string    `gorm:"size:128" json:"event_type,omitempty"`
	Location  string    `gorm:"size:256" json:"location,omitempty"`
	Notes     string    `gorm:"size:2048" json:"notes,omitempty"`

	Status         Status  `gorm:"size:16;not null;default:pending" json:"status"`
	EstimatedValue float64 `gorm:"not null;default:0" json:"estimated_value"`

	RecurrenceType      RecurrenceType `gorm:"size:16" json:"recurrence_type,omitempty"`
	RecurrenceEndDate   *time.Time     `json:"recurrence_end_date,omitempty"`
	ParentAppointmentID *string        `gorm:"index;size:36" json:"parent_appointment_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOccurrence reports whether a was generated from a base appointment.
func (a *Appointment) IsOccurrence() bool {
	return a.ParentAppointmentID != nil && *a.ParentAppointmentID != ""
}
