package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/attendance-tracker/constants"
)

func TestParseCalendar_Valid(t *testing.T) {
	raw := "Here is the data:\n```json\n" + `{
		"events": [
			{"name": "Semester begins", "date": "2025-06-02", "type": "class"},
			{"name": "Mid-term", "date": "2025-07-14", "time": "10:00", "type": "Midterm", "description": null},
			{"name": "Founders Day", "date": "2025-07-40", "type": "holiday"}
		],
		"total_working_days": "72",
		"semester_start": "2025-06-02",
		"semester_end": "2025-08-23",
		"confidence_score": 0.92,
		"notes": "ignored"
	}` + "\n```"

	res, err := ParseCalendar(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 72, res.TotalWorkingDays)
	assert.Equal(t, "2025-06-02", res.SemesterStart)
	assert.InDelta(t, 0.92, res.ConfidenceScore, 1e-9)
	require.Len(t, res.Events, 2, "events with impossible dates are dropped")
	assert.Equal(t, constants.EventLecture, res.Events[0].Type)
	assert.Equal(t, constants.EventExam, res.Events[1].Type)
	assert.Equal(t, "10:00", res.Events[1].Time)
	assert.Empty(t, res.Events[1].Description)
}

func TestParseCalendar_RepairsSyntax(t *testing.T) {
	raw := `{"events": [{"name": "Class Day 1", "date": "2025-06-02", "type": "lecture",},], "total_working_days": 1, "confidence_score": 0.8,}`
	res, err := ParseCalendar(raw, nil)
	require.NoError(t, err)
	assert.Len(t, res.Events, 1)
}

func TestParseCalendar_ClampsConfidence(t *testing.T) {
	res, err := ParseCalendar(`{"events": [], "total_working_days": 0, "confidence_score": 1.7}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.ConfidenceScore)

	res, err = ParseCalendar(`{"events": [], "total_working_days": 0, "confidence_score": -3}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ConfidenceScore)
}

func TestParseCalendar_RejectsWrongShape(t *testing.T) {
	cases := map[string]string{
		"no json":          "I could not read the calendar.",
		"missing events":   `{"total_working_days": 10, "confidence_score": 0.5}`,
		"negative days":    `{"events": [], "total_working_days": -4, "confidence_score": 0.5}`,
		"fractional days":  `{"events": [], "total_working_days": 4.5, "confidence_score": 0.5}`,
		"bad date pattern": `{"events": [{"name": "x", "date": "02/06/2025"}], "total_working_days": 1, "confidence_score": 0.5}`,
		"events not array": `{"events": {"name": "x"}, "total_working_days": 1, "confidence_score": 0.5}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCalendar(raw, nil)
			assert.Error(t, err)
		})
	}

	_, err := ParseCalendar("no braces here", nil)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestParseTimetable_DerivesScheduleAndCanonicalizesDays(t *testing.T) {
	raw := `{
		"timetable_events": [
			{"subject": "Mathematics", "day": "monday", "time": "09:00-10:00", "instructor": "Dr. Smith"},
			{"subject": "Physics", "day": "WEDNESDAY", "time": "10:00-11:00"},
			{"subject": "Chapel", "day": "Sunday", "time": "08:00-09:00"}
		],
		"total_working_days": 2,
		"confidence_score": "0.85"
	}`
	res, err := ParseTimetable(raw, nil)
	require.NoError(t, err)

	require.Len(t, res.TimetableEvents, 2, "sunday classes are dropped")
	assert.Equal(t, "Monday", res.TimetableEvents[0].Day)
	assert.Equal(t, 2, res.TotalWorkingDays)
	assert.InDelta(t, 0.85, res.ConfidenceScore, 1e-9)
	assert.Len(t, res.WeeklySchedule, 6)
	assert.Equal(t, "Physics", res.WeeklySchedule["Wednesday"][0].Subject)
	assert.Empty(t, res.WeeklySchedule["Tuesday"])
}

func TestParseTimetable_UsesModelSchedule(t *testing.T) {
	raw := `{
		"timetable_events": [{"subject": "Biology", "day": "Tuesday", "time": "11:00-12:00"}],
		"weekly_schedule": {
			"tuesday": [{"subject": "Biology", "time": "11:00-12:00"}],
			"Sunday": [{"subject": "Rest"}]
		},
		"total_working_days": 1,
		"confidence_score": 0.7
	}`
	res, err := ParseTimetable(raw, nil)
	require.NoError(t, err)
	require.Len(t, res.WeeklySchedule["Tuesday"], 1)
	assert.Equal(t, "Tuesday", res.WeeklySchedule["Tuesday"][0].Day)
	assert.NotContains(t, res.WeeklySchedule, "Sunday")
}

func TestExtractJSONObject(t *testing.T) {
	obj, err := ExtractJSONObject("```json\n{\"a\": {\"b\": 1}}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, obj)

	obj, err = ExtractJSONObject(`{"a": [1, 2`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": [1, 2`, obj)
}

func TestBuildPrompt(t *testing.T) {
	long := strings.Repeat("ж", constants.PromptTextLimit+500)
	p := BuildPrompt(ModeCalendar, long)
	assert.Contains(t, p, "academic calendar")
	assert.Equal(t, constants.PromptTextLimit, strings.Count(p, "ж"), "truncation counts runes, not bytes")

	p = BuildPrompt(ModeTimetable, "Monday 9:00 Physics")
	assert.Contains(t, p, "timetable_events")
	assert.Contains(t, p, "Monday 9:00 Physics")
	assert.True(t, strings.HasSuffix(p, "Monday 9:00 Physics"))
}

func TestSelection(t *testing.T) {
	assert.False(t, None().Enabled())
	assert.Equal(t, ProviderNone, None().Provider)
	assert.True(t, ModeCalendar.Valid())
	assert.False(t, Mode("syllabus").Valid())
}
