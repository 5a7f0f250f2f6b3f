package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decor-agenda-backend/internal/model"
)

var now = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGroupByMonthOrdersGroupsAndItems(t *testing.T) {
	// Three months, deliberately out of order.
	appts := []model.Appointment{
		{ID: "aug-20", EventDate: date(2024, time.August, 20)},
		{ID: "jun-25", EventDate: date(2024, time.June, 25)},
		{ID: "jul-01", EventDate: date(2024, time.July, 1)},
		{ID: "jun-11", EventDate: date(2024, time.June, 11)},
		{ID: "aug-05", EventDate: date(2024, time.August, 5)},
	}

	groups := GroupByMonth(appts, now)

	require.Len(t, groups, 3)
	assert.Equal(t, "2024-06", groups[0].Key)
	assert.Equal(t, "2024-07", groups[1].Key)
	assert.Equal(t, "2024-08", groups[2].Key)

	assert.Equal(t, "jun-11", groups[0].Items[0].Appointment.ID)
	assert.Equal(t, "jun-25", groups[0].Items[1].Appointment.ID)
	assert.Equal(t, "aug-05", groups[2].Items[0].Appointment.ID)
	assert.Equal(t, "aug-20", groups[2].Items[1].Appointment.ID)
}

func TestGroupByMonthStableForEqualDates(t *testing.T) {
	appts := []model.Appointment{
		{ID: "first", EventDate: date(2024, time.June, 15)},
		{ID: "second", EventDate: date(2024, time.June, 15)},
	}

	groups := GroupByMonth(appts, now)

	require.Len(t, groups, 1)
	assert.Equal(t, "first", groups[0].Items[0].Appointment.ID)
	assert.Equal(t, "second", groups[0].Items[1].Appointment.ID)
}

func TestGroupByMonthEmpty(t *testing.T) {
	assert.Empty(t, GroupByMonth(nil, now))
}

func TestRelativeLabelAcrossZones(t *testing.T) {
	// A clock west of UTC late in the evening still labels by calendar
	// date: the next UTC date is tomorrow, not today.
	localNow := time.Date(2024, time.June, 10, 23, 0, 0, 0, time.FixedZone("UTC-3", -3*60*60))
	assert.Equal(t, "today", RelativeLabel(date(2024, time.June, 10), localNow))
	assert.Equal(t, "tomorrow", RelativeLabel(date(2024, time.June, 11), localNow))
}

func TestRelativeLabel(t *testing.T) {
	cases := []struct {
		name string
		date time.Time
		want string
	}{
		{"past", date(2024, time.June, 9), "past"},
		{"today", date(2024, time.June, 10), "today"},
		{"tomorrow", date(2024, time.June, 11), "tomorrow"},
		{"two days", date(2024, time.June, 12), "in 2 days"},
		{"seven days", date(2024, time.June, 17), "in 7 days"},
		{"beyond a week", date(2024, time.June, 18), "Tuesday"},
		{"far future", date(2024, time.December, 25), "Wednesday"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RelativeLabel(tc.date, now))
		})
	}
}
