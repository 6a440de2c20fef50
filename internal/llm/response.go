package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

// ErrNoJSON is returned when a response carries no JSON object at all.
var ErrNoJSON = errors.New("no json object in response")

// ExtractJSONObject returns the span from the first '{' to the last '}',
// which drops code fences and any prose around the payload. A response cut
// off before its closing brace is returned from '{' to the end.
func ExtractJSONObject(s string) (string, error) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", ErrNoJSON
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return strings.TrimSpace(s[start:]), nil
	}
	return s[start : end+1], nil
}

// prepare turns a raw model reply into schema-valid JSON for mode.
// jsonrepair only fixes syntax; the shape is still checked strictly.
func prepare(raw string, mode Mode, logger *slog.Logger) ([]byte, error) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(obj)) {
		repaired, err := jsonrepair.JSONRepair(obj)
		if err != nil {
			return nil, fmt.Errorf("repair json: %w", err)
		}
		logger.Warn("llm.response.repaired", "mode", string(mode), "bytes", len(obj))
		obj = repaired
	}
	clean, _, err := NormalizeAndSanitizeJSON([]byte(obj), mode, logger)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSONAgainstSchema(SchemaFor(mode), clean); err != nil {
		return nil, err
	}
	return clean, nil
}

// ParseCalendar converts a model reply into a calendar analysis.
func ParseCalendar(raw string, logger *slog.Logger) (entity.CalendarAnalysis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clean, err := prepare(raw, ModeCalendar, logger)
	if err != nil {
		return entity.CalendarAnalysis{}, err
	}

	var p struct {
		Events []struct {
			Name        string `json:"name"`
			Date        string `json:"date"`
			Time        string `json:"time"`
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"events"`
		TotalWorkingDays int     `json:"total_working_days"`
		SemesterStart    string  `json:"semester_start"`
		SemesterEnd      string  `json:"semester_end"`
		ConfidenceScore  float64 `json:"confidence_score"`
	}
	if err := json.Unmarshal(clean, &p); err != nil {
		return entity.CalendarAnalysis{}, fmt.Errorf("unmarshal calendar: %w", err)
	}

	out := entity.CalendarAnalysis{
		Events:           make([]entity.CalendarEvent, 0, len(p.Events)),
		TotalWorkingDays: p.TotalWorkingDays,
		SemesterStart:    p.SemesterStart,
		SemesterEnd:      p.SemesterEnd,
		ConfidenceScore:  ClampConfidence(p.ConfidenceScore),
		Source:           entity.SourceAI,
	}
	for _, ev := range p.Events {
		if _, err := time.Parse("2006-01-02", ev.Date); err != nil {
			logger.Warn("llm.response.bad_date", "name", ev.Name, "date", ev.Date)
			continue
		}
		typ, _ := constants.CanonicalEventType(ev.Type)
		out.Events = append(out.Events, entity.CalendarEvent{
			Name:        ev.Name,
			Date:        ev.Date,
			Time:        ev.Time,
			Type:        typ,
			Description: ev.Description,
		})
	}
	return out, nil
}

// ParseTimetable converts a model reply into a timetable analysis.
func ParseTimetable(raw string, logger *slog.Logger) (entity.TimetableAnalysis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clean, err := prepare(raw, ModeTimetable, logger)
	if err != nil {
		return entity.TimetableAnalysis{}, err
	}

	var p struct {
		TimetableEvents  []entity.TimetableEvent `json:"timetable_events"`
		WeeklySchedule   entity.WeeklySchedule   `json:"weekly_schedule"`
		TotalWorkingDays int                     `json:"total_working_days"`
		ConfidenceScore  float64                 `json:"confidence_score"`
	}
	if err := json.Unmarshal(clean, &p); err != nil {
		return entity.TimetableAnalysis{}, fmt.Errorf("unmarshal timetable: %w", err)
	}
	if p.TimetableEvents == nil {
		p.TimetableEvents = []entity.TimetableEvent{}
	}

	ws := entity.ScheduleFromEvents(p.TimetableEvents)
	if p.WeeklySchedule.EventCount() > 0 {
		ws = entity.NewWeeklySchedule()
		for _, d := range constants.Weekdays {
			if evs := p.WeeklySchedule[d]; len(evs) > 0 {
				ws[d] = evs
			}
		}
	}

	return entity.TimetableAnalysis{
		TimetableEvents:  p.TimetableEvents,
		TotalWorkingDays: p.TotalWorkingDays,
		WeeklySchedule:   ws,
		ConfidenceScore:  ClampConfidence(p.ConfidenceScore),
		Source:           entity.SourceAI,
	}, nil
}

// ClampConfidence forces a model-reported score into [0,1].
func ClampConfidence(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
