package parse

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Date parses a calendar date in "YYYY-MM-DD" form. The result carries no
// time-of-day component; all scheduling arithmetic works on whole days.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return d, nil
}

// TimeOfDay validates an optional "HH:MM" (or "HH:MM:SS") time-of-day string
// and returns it normalized to "HH:MM". The empty string stays empty.
func TimeOfDay(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t.Format(timeLayout), nil
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format(timeLayout), nil
	}
	return "", fmt.Errorf("unable to parse time of day %q", raw)
}

// Weekday parses a week-start name from configuration ("sunday", "monday",
// ...). The empty string defaults to Sunday.
func Weekday(raw string) (time.Weekday, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s == strings.ToLower(d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unable to parse weekday %q", raw)
}
