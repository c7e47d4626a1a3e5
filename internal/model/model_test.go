package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
		ok   bool
	}{
		{"09:00", NewTimeOfDay(9, 0, 0), true},
		{"14:30", NewTimeOfDay(14, 30, 0), true},
		{"23:59:59", NewTimeOfDay(23, 59, 59), true},
		{"00:00", 0, true},
		{"24:00", 0, false},
		{"9am", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:00", NewTimeOfDay(9, 0, 0).String())
	assert.Equal(t, "09:00:30", NewTimeOfDay(9, 0, 30).String())
}

func TestTimeOfDayOfAndOn(t *testing.T) {
	at := time.Date(2025, 6, 1, 14, 0, 0, 500, time.UTC)
	tod := TimeOfDayOf(at)
	assert.Equal(t, NewTimeOfDay(14, 0, 0), tod)
	assert.Equal(t, 14, tod.Hour())

	other := time.Date(2025, 7, 4, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 4, 14, 0, 0, 0, time.UTC), tod.On(other))
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal([]TimeOfDay{NewTimeOfDay(9, 0, 0), NewTimeOfDay(14, 0, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `["09:00","14:00"]`, string(b))

	var out []TimeOfDay
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, []TimeOfDay{NewTimeOfDay(9, 0, 0), NewTimeOfDay(14, 0, 0)}, out)

	assert.Error(t, json.Unmarshal([]byte(`["25:00"]`), &out))
}

func TestDedupeTimesKeepsOrder(t *testing.T) {
	d := Doctor{AvailableTimes: []TimeOfDay{
		NewTimeOfDay(14, 0, 0), NewTimeOfDay(9, 0, 0), NewTimeOfDay(14, 0, 0), NewTimeOfDay(11, 0, 0),
	}}
	d.DedupeTimes()
	assert.Equal(t, []TimeOfDay{NewTimeOfDay(14, 0, 0), NewTimeOfDay(9, 0, 0), NewTimeOfDay(11, 0, 0)}, d.AvailableTimes)
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(time.Date(2025, 6, 1, 17, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestAppointmentEnd(t *testing.T) {
	a := Appointment{Time: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), a.End())
}
