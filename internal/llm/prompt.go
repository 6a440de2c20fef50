package llm

import (
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/constants"
)

// PromptText trims text and caps it at constants.PromptTextLimit runes.
func PromptText(text string) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) > constants.PromptTextLimit {
		return string(r[:constants.PromptTextLimit])
	}
	return text
}

// BuildPrompt renders the fixed instruction for mode around the document text.
func BuildPrompt(mode Mode, text string) string {
	if mode == ModeTimetable {
		return buildTimetablePrompt(PromptText(text))
	}
	return buildCalendarPrompt(PromptText(text))
}

func buildCalendarPrompt(text string) string {
	parts := []string{
		"Analyze this academic calendar text and extract the semester's events.",
		"Return ONLY a JSON object with these keys:",
		`"events": an array of objects with "name", "date" (YYYY-MM-DD), optional "time" (HH:MM), "type" (one of ` +
			strings.Join(constants.EventTypes(), ", ") + `) and optional "description";`,
		`"total_working_days": the number of instruction days, excluding Sundays and holidays;`,
		`"semester_start" and "semester_end" (YYYY-MM-DD) when known;`,
		`"confidence_score": a number between 0 and 1.`,
		"Never output null. If a field is not present, omit it.",
		"",
		"Calendar text:",
		text,
	}
	return strings.Join(parts, "\n")
}

func buildTimetablePrompt(text string) string {
	parts := []string{
		"Analyze this class timetable text and extract the weekly schedule.",
		"Return ONLY a JSON object with these keys:",
		`"timetable_events": an array of objects with "subject", "day" (one of ` +
			strings.Join(constants.Weekdays, ", ") + `), "time" (HH:MM-HH:MM) and optional "duration", "room", "instructor";`,
		`"weekly_schedule": an object mapping each day Monday to Saturday to its array of timetable events;`,
		`"total_working_days": the number of distinct days that have classes;`,
		`"confidence_score": a number between 0 and 1.`,
		`"subject" must be the course name such as "Mathematics" or "Physics", never a teacher's name. ` +
			`Names starting with Dr., Prof., Mr., Ms., Mrs. or Miss belong in "instructor".`,
		"Never output null. If a field is not present, omit it.",
		"",
		"Timetable text:",
		text,
	}
	return strings.Join(parts, "\n")
}
