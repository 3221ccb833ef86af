package settlement

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TimeOfDay is a wall-clock reading without a date. The zero value means
// "not recorded", which is different from midnight.
type TimeOfDay struct {
	hour   int
	minute int
	second int
	valid  bool
}

// NewTimeOfDay creates a recorded time of day. Out-of-range components
// produce an unrecorded value.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}
	}
	return TimeOfDay{hour: hour, minute: minute, second: second, valid: true}
}

// ParseTimeOfDay parses "15:04" or "15:04:05". Malformed input yields an
// unrecorded value rather than an error.
func ParseTimeOfDay(s string) TimeOfDay {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
		}
	}
	return TimeOfDay{}
}

// IsZero returns true if no time was recorded
func (t TimeOfDay) IsZero() bool {
	return !t.valid
}

// On places the time of day on the calendar date of day in loc
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.hour, t.minute, t.second, 0, loc)
}

// String returns the time formatted as HH:MM:SS, or "" if unrecorded
func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
}

// ParseDate parses a calendar date in "2006-01-02" form. Malformed input
// yields the zero time.
func ParseDate(s string) time.Time {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return d
}

// wallClock drops the zone so that spans are measured in calendar time and
// daylight-saving shifts cannot add or remove an hour.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ceilDays converts a positive span into whole days, counting any started
// day as a full one.
func ceilDays(span time.Duration) int64 {
	if span <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	days := int64(span / day)
	if span%day != 0 {
		days++
	}
	return days
}
