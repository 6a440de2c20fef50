package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/constants"
)

// NormalizeAndSanitizeJSON
// - Drops null/empty optionals
// - Coerces numeric strings for total_working_days and confidence_score
// - Canonicalizes weekday names and drops events on unknown days
// - Removes unknown top-level keys
func NormalizeAndSanitizeJSON(raw []byte, mode Mode, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// 1) numeric fields the model likes to quote or send as floats
	if v, ok := m["total_working_days"]; ok {
		if n, ok := coerceInt(v); ok {
			m["total_working_days"] = n
		}
	}
	if v, ok := m["confidence_score"]; ok {
		if f, ok := coerceFloat(v); ok {
			m["confidence_score"] = f
		}
	}

	// 2) events
	var allowed map[string]struct{}
	switch mode {
	case ModeTimetable:
		allowed = map[string]struct{}{
			"timetable_events": {}, "weekly_schedule": {}, "total_working_days": {}, "confidence_score": {},
		}
		if list, ok := m["timetable_events"].([]any); ok {
			m["timetable_events"] = sanitizeTimetableEvents(list, "", &dropped)
		}
		if ws, ok := m["weekly_schedule"].(map[string]any); ok {
			clean := make(map[string]any, len(constants.Weekdays))
			for k, v := range ws {
				day, ok := constants.CanonicalWeekday(k)
				list, isList := v.([]any)
				if !ok || !isList {
					dropped = append(dropped, "weekly_schedule."+k)
					continue
				}
				clean[day] = sanitizeTimetableEvents(list, day, &dropped)
			}
			m["weekly_schedule"] = clean
		} else if _, present := m["weekly_schedule"]; present {
			delete(m, "weekly_schedule")
			dropped = append(dropped, "weekly_schedule(type)")
		}
	default:
		allowed = map[string]struct{}{
			"events": {}, "total_working_days": {}, "semester_start": {}, "semester_end": {}, "confidence_score": {},
		}
		if list, ok := m["events"].([]any); ok {
			m["events"] = sanitizeCalendarEvents(list, &dropped)
		}
		for _, k := range []string{"semester_start", "semester_end"} {
			if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
				m[k] = strings.TrimSpace(s)
			} else if _, present := m[k]; present {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			}
		}
	}

	// 3) remove unknown keys
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.response.sanitized", "mode", string(mode), "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeCalendarEvents(list []any, dropped *[]string) []any {
	out := make([]any, 0, len(list))
	for i, item := range list {
		ev, ok := item.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("events[%d](type)", i))
			continue
		}
		trimStrings(ev, "name", "date", "time", "type", "description")
		out = append(out, ev)
	}
	return out
}

func sanitizeTimetableEvents(list []any, day string, dropped *[]string) []any {
	out := make([]any, 0, len(list))
	for i, item := range list {
		ev, ok := item.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("timetable_events[%d](type)", i))
			continue
		}
		trimStrings(ev, "subject", "day", "time", "duration", "room", "instructor")
		if _, ok := ev["day"]; !ok && day != "" {
			ev["day"] = day
		}
		if s, ok := ev["day"].(string); ok {
			canon, ok := constants.CanonicalWeekday(s)
			if !ok {
				*dropped = append(*dropped, fmt.Sprintf("timetable_events[%d](day=%s)", i, s))
				continue
			}
			ev["day"] = canon
		}
		out = append(out, ev)
	}
	return out
}

// trimStrings trims the listed keys and deletes those that end up empty or null.
func trimStrings(m map[string]any, keys ...string) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
			} else {
				m[k] = s
			}
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
}

func coerceInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return int64(t), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}
