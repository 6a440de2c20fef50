package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFromEvents(t *testing.T) {
	ws := ScheduleFromEvents([]TimetableEvent{
		{Subject: "Physics", Day: "Monday", Time: "09:00-10:00"},
		{Subject: "Math", Day: "Wednesday", Time: "10:00-11:00"},
		{Subject: "Chemistry", Day: "Monday", Time: "11:00-12:00"},
		{Subject: "Rest", Day: "Sunday", Time: "09:00-10:00"},
	})

	assert.Len(t, ws, 6)
	assert.NotContains(t, ws, "Sunday")
	assert.Equal(t, []string{"Monday", "Wednesday"}, ws.ActiveDays())
	assert.Equal(t, 3, ws.EventCount())
	assert.Equal(t, "Chemistry", ws["Monday"][1].Subject)
}

func TestWeeklyScheduleJSONKeepsEmptyDays(t *testing.T) {
	b, err := json.Marshal(NewWeeklySchedule())
	require.NoError(t, err)
	assert.JSONEq(t, `{"Monday":[],"Tuesday":[],"Wednesday":[],"Thursday":[],"Friday":[],"Saturday":[]}`, string(b))
}

func TestAttendanceStatsOnTrack(t *testing.T) {
	assert.True(t, AttendanceStats{AttendancePercentage: 75, TargetPercentage: 75}.OnTrack())
	assert.False(t, AttendanceStats{AttendancePercentage: 74.99, TargetPercentage: 75}.OnTrack())
}
