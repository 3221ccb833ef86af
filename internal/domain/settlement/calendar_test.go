package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		zero     bool
	}{
		{"10:00", "10:00:00", false},
		{"23:59:59", "23:59:59", false},
		{" 07:05 ", "07:05:00", false},
		{"00:00", "00:00:00", false},
		{"", "", true},
		{"25:00", "", true},
		{"noon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tod := ParseTimeOfDay(tt.input)
			assert.Equal(t, tt.zero, tod.IsZero())
			assert.Equal(t, tt.expected, tod.String())
		})
	}
}

func TestNewTimeOfDay_OutOfRange(t *testing.T) {
	assert.True(t, NewTimeOfDay(24, 0, 0).IsZero())
	assert.True(t, NewTimeOfDay(12, 60, 0).IsZero())
	assert.True(t, NewTimeOfDay(-1, 0, 0).IsZero())
	assert.False(t, NewTimeOfDay(0, 0, 0).IsZero())
}

func TestTimeOfDay_On(t *testing.T) {
	tod := NewTimeOfDay(14, 30, 15)
	got := tod.On(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 14, 30, 15, 0, time.UTC), got)
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), ParseDate("2024-01-10"))
	assert.True(t, ParseDate("10/01/2024").IsZero())
	assert.True(t, ParseDate("").IsZero())
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, int64(0), ceilDays(0))
	assert.Equal(t, int64(0), ceilDays(-time.Hour))
	assert.Equal(t, int64(1), ceilDays(time.Second))
	assert.Equal(t, int64(1), ceilDays(24*time.Hour))
	assert.Equal(t, int64(2), ceilDays(24*time.Hour+time.Nanosecond))
}
