package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockMinutes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  int
	}{
		{"00:00", 0},
		{"08:30", 510},
		{"23:59", 1439},
		{"24:00", -1},
		{"12:60", -1},
		{"noon", -1},
		{"", -1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClockMinutes(c.input), "input %q", c.input)
	}
}

func TestIsNightShift(t *testing.T) {
	t.Parallel()
	assert.False(t, ShiftWindow{StartTime: "08:00", EndTime: "17:00"}.IsNightShift())
	assert.True(t, ShiftWindow{StartTime: "21:00", EndTime: "05:00"}.IsNightShift())
	assert.False(t, ShiftWindow{StartTime: "bad", EndTime: "05:00"}.IsNightShift())
}

func TestResolutionEffectiveTimes(t *testing.T) {
	t.Parallel()
	customStart := "10:00"

	r := Resolution{
		Source:      SourceSchedule,
		Window:      &ShiftWindow{StartTime: "08:00", EndTime: "17:00"},
		CustomStart: &customStart,
	}

	// Custom times win per field; the untouched end falls back to the shift.
	assert.Equal(t, "10:00", r.EffectiveStart())
	assert.Equal(t, "17:00", r.EffectiveEnd())
	assert.True(t, r.HasWindow())
	assert.False(t, r.CrossesMidnight())
}

func TestResolutionNoWindow(t *testing.T) {
	t.Parallel()
	r := Resolution{Source: SourceNone}

	assert.Equal(t, "", r.EffectiveStart())
	assert.False(t, r.HasWindow())
}

func TestResolutionCrossesMidnight(t *testing.T) {
	t.Parallel()
	r := Resolution{
		Source: SourceSchedule,
		Window: &ShiftWindow{StartTime: "21:00", EndTime: "05:00"},
	}

	assert.True(t, r.CrossesMidnight())
}
