package constants

import "strings"

// EventType classifies a calendar event.
type EventType string

const (
	EventLecture  EventType = "lecture"
	EventTutorial EventType = "tutorial"
	EventLab      EventType = "lab"
	EventExam     EventType = "exam"
	EventHoliday  EventType = "holiday"
	EventOther    EventType = "other"
)

var allEventTypes = []EventType{
	EventLecture,
	EventTutorial,
	EventLab,
	EventExam,
	EventHoliday,
	EventOther,
}

// EventTypes returns the allowed event types as strings.
func EventTypes() []string {
	result := make([]string, len(allEventTypes))
	for i, t := range allEventTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalEventType maps free-form model output onto an EventType.
// Unknown values become EventOther and report false.
func CanonicalEventType(input string) (EventType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return EventOther, false
	}

	synonyms := map[string]EventType{
		"class":       EventLecture,
		"lecture day": EventLecture,
		"instruction": EventLecture,
		"practical":   EventLab,
		"laboratory":  EventLab,
		"tutorials":   EventTutorial,
		"exam":        EventExam,
		"examination": EventExam,
		"midterm":     EventExam,
		"mid-term":    EventExam,
		"final":       EventExam,
		"test":        EventExam,
		"quiz":        EventExam,
		"vacation":    EventHoliday,
		"break":       EventHoliday,
		"recess":      EventHoliday,
		"festival":    EventHoliday,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}
	for _, t := range allEventTypes {
		if normalized == string(t) {
			return t, true
		}
	}
	return EventOther, false
}

// Weekdays are the days a class can be scheduled on. Sunday is never a working day.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// CanonicalWeekday title-cases a full weekday name; ok is false for Sunday and junk.
func CanonicalWeekday(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Weekdays {
		if strings.EqualFold(s, d) {
			return d, true
		}
	}
	return "", false
}

// AttendanceStatus is the outcome recorded for a class.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// Counts reports whether the status counts as attended.
func (s AttendanceStatus) Counts() bool {
	return s == StatusPresent || s == StatusLate
}

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

const (
	DefaultTargetPercentage = 75.0

	// ExtractedTextPreview is how much extracted text is echoed back in results.
	ExtractedTextPreview = 1000
	// PromptTextLimit caps the document text embedded into an AI prompt.
	PromptTextLimit = 4000
)
