package llm

import "github.com/joseph-ayodele/attendance-tracker/constants"

// SchemaFor returns the JSON Schema the model response for mode must satisfy.
func SchemaFor(mode Mode) map[string]any {
	if mode == ModeTimetable {
		return BuildTimetableJSONSchema()
	}
	return BuildCalendarJSONSchema()
}

// BuildCalendarJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
func BuildCalendarJSONSchema() map[string]any {
	event := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "minLength": 1},
			"date":        dateProp(),
			"time":        map[string]any{"type": "string"},
			"type":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
		"required": []string{"name", "date"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"events":             map[string]any{"type": "array", "items": event},
			"total_working_days": map[string]any{"type": "integer", "minimum": 0},
			"semester_start":     dateProp(),
			"semester_end":       dateProp(),
			"confidence_score":   map[string]any{"type": "number"},
		},
		"required": []string{"events", "total_working_days", "confidence_score"},
	}
}

// BuildTimetableJSONSchema returns the timetable response schema.
func BuildTimetableJSONSchema() map[string]any {
	event := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject":    map[string]any{"type": "string", "minLength": 1},
			"day":        map[string]any{"type": "string", "enum": constants.Weekdays},
			"time":       map[string]any{"type": "string"},
			"duration":   map[string]any{"type": "string"},
			"room":       map[string]any{"type": "string"},
			"instructor": map[string]any{"type": "string"},
		},
		"required": []string{"subject", "day"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"timetable_events":   map[string]any{"type": "array", "items": event},
			"weekly_schedule":    map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "array", "items": event}},
			"total_working_days": map[string]any{"type": "integer", "minimum": 0},
			"confidence_score":   map[string]any{"type": "number"},
		},
		"required": []string{"timetable_events", "total_working_days", "confidence_score"},
	}
}

func dateProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}
