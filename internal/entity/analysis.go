package entity

import "github.com/joseph-ayodele/attendance-tracker/constants"

// CalendarEvent is one dated entry of an academic calendar.
type CalendarEvent struct {
	Name        string              `json:"name"`
	Date        string              `json:"date"`           // YYYY-MM-DD
	Time        string              `json:"time,omitempty"` // HH:MM
	Type        constants.EventType `json:"type"`
	Description string              `json:"description,omitempty"`
}

// TimetableEvent is one recurring weekly class.
type TimetableEvent struct {
	Subject    string `json:"subject"`
	Day        string `json:"day"`  // Monday..Saturday
	Time       string `json:"time"` // HH:MM-HH:MM
	Duration   string `json:"duration,omitempty"`
	Room       string `json:"room,omitempty"`
	Instructor string `json:"instructor,omitempty"`
}

// WeeklySchedule maps Monday..Saturday to the classes held that day.
type WeeklySchedule map[string][]TimetableEvent

// NewWeeklySchedule returns a schedule with every weekday present and empty.
func NewWeeklySchedule() WeeklySchedule {
	ws := make(WeeklySchedule, len(constants.Weekdays))
	for _, d := range constants.Weekdays {
		ws[d] = []TimetableEvent{}
	}
	return ws
}

// ScheduleFromEvents groups events by day, preserving their order.
// Events on unknown days are dropped.
func ScheduleFromEvents(events []TimetableEvent) WeeklySchedule {
	ws := NewWeeklySchedule()
	for _, ev := range events {
		if _, ok := ws[ev.Day]; ok {
			ws[ev.Day] = append(ws[ev.Day], ev)
		}
	}
	return ws
}

// ActiveDays returns the weekdays with at least one class, in week order.
func (ws WeeklySchedule) ActiveDays() []string {
	var out []string
	for _, d := range constants.Weekdays {
		if len(ws[d]) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// EventCount is the number of classes across the week.
func (ws WeeklySchedule) EventCount() int {
	n := 0
	for _, d := range constants.Weekdays {
		n += len(ws[d])
	}
	return n
}

// CalendarAnalysis is the calendar variant of an analysis result.
type CalendarAnalysis struct {
	Events           []CalendarEvent `json:"events"`
	TotalWorkingDays int             `json:"total_working_days"`
	SemesterStart    string          `json:"semester_start,omitempty"`
	SemesterEnd      string          `json:"semester_end,omitempty"`
	ConfidenceScore  float64         `json:"confidence_score"`
	ExtractedText    string          `json:"extracted_text,omitempty"`
	Source           string          `json:"-"`
}

// TimetableAnalysis is the timetable variant of an analysis result.
type TimetableAnalysis struct {
	TimetableEvents  []TimetableEvent `json:"timetable_events"`
	TotalWorkingDays int              `json:"total_working_days"`
	WeeklySchedule   WeeklySchedule   `json:"weekly_schedule"`
	ConfidenceScore  float64          `json:"confidence_score"`
	ExtractedText    string           `json:"extracted_text,omitempty"`
	Source           string           `json:"-"`
}

// Analysis sources, reported in logs and metrics only.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// CombinedProcessingResult merges a calendar and a timetable analysis.
type CombinedProcessingResult struct {
	CalendarEvents       []CalendarEvent  `json:"calendar_events"`
	TimetableEvents      []TimetableEvent `json:"timetable_events"`
	TotalWorkingDays     int              `json:"total_working_days"`
	CalendarWorkingDays  int              `json:"calendar_working_days"`
	TimetableWorkingDays int              `json:"timetable_working_days"`
	SemesterStart        string           `json:"semester_start,omitempty"`
	SemesterEnd          string           `json:"semester_end,omitempty"`
	ConfidenceScore      float64          `json:"confidence_score"`
	TotalClasses         int              `json:"total_classes"`
	ClassesPerWorkingDay int              `json:"classes_per_working_day"`
	WeeklySchedule       WeeklySchedule   `json:"weekly_schedule"`
}

// AttendanceStats is derived on every request and never stored.
type AttendanceStats struct {
	TotalClasses             int     `json:"total_classes"`
	AttendedClasses          int     `json:"attended_classes"`
	AttendancePercentage     float64 `json:"attendance_percentage"`
	RemainingClasses         int     `json:"remaining_classes"`
	ClassesToAttendForTarget int     `json:"classes_to_attend_for_target"`
	TargetPercentage         float64 `json:"target_percentage"`
}

// OnTrack reports whether the current percentage meets the target.
func (s AttendanceStats) OnTrack() bool {
	return s.AttendancePercentage >= s.TargetPercentage
}
