package attendance

import "github.com/joseph-ayodele/attendance-tracker/internal/entity"

// Combine folds a calendar and a timetable analysis into one result.
//
// When no weekday has classes, total_classes falls back to the calendar's
// working day count. This is looser than ComputeFromSchedule, which rejects a
// zero product; both behaviours are kept as they are.
func Combine(cal entity.CalendarAnalysis, tt entity.TimetableAnalysis) entity.CombinedProcessingResult {
	ws := tt.WeeklySchedule
	if ws == nil {
		ws = entity.ScheduleFromEvents(tt.TimetableEvents)
	}

	activeDays := len(ws.ActiveDays())
	perDay := 0
	if activeDays > 0 {
		perDay = ws.EventCount() / activeDays
	}

	total := cal.TotalWorkingDays
	if perDay > 0 {
		total = cal.TotalWorkingDays * perDay
	}

	calEvents := cal.Events
	if calEvents == nil {
		calEvents = []entity.CalendarEvent{}
	}
	ttEvents := tt.TimetableEvents
	if ttEvents == nil {
		ttEvents = []entity.TimetableEvent{}
	}

	return entity.CombinedProcessingResult{
		CalendarEvents:       calEvents,
		TimetableEvents:      ttEvents,
		TotalWorkingDays:     cal.TotalWorkingDays,
		CalendarWorkingDays:  cal.TotalWorkingDays,
		TimetableWorkingDays: activeDays,
		SemesterStart:        cal.SemesterStart,
		SemesterEnd:          cal.SemesterEnd,
		ConfidenceScore:      (cal.ConfidenceScore + tt.ConfidenceScore) / 2,
		TotalClasses:         total,
		ClassesPerWorkingDay: perDay,
		WeeklySchedule:       ws,
	}
}
