// Package schedule projects a weekly timetable over a semester.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/attendance"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

const dateLayout = "2006-01-02"

var rruleDays = map[string]rrule.Weekday{
	"Monday":    rrule.MO,
	"Tuesday":   rrule.TU,
	"Wednesday": rrule.WE,
	"Thursday":  rrule.TH,
	"Friday":    rrule.FR,
	"Saturday":  rrule.SA,
}

// Session is one class on one date.
type Session struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Subject string `json:"subject"`
	Time    string `json:"time,omitempty"`
	Room    string `json:"room,omitempty"`
}

// Projection is the set of classes a weekly schedule produces between two dates.
type Projection struct {
	SemesterStart   string    `json:"semester_start"`
	SemesterEnd     string    `json:"semester_end"`
	TotalClasses    int       `json:"total_classes"`
	WorkingDays     int       `json:"working_days"`
	HolidaysSkipped int       `json:"holidays_skipped"`
	Sessions        []Session `json:"sessions"`
}

// Project expands every weekday with classes into a weekly recurrence from
// start to end inclusive. Holidays (YYYY-MM-DD) are excluded.
func Project(weekly entity.WeeklySchedule, start, end time.Time, holidays []string) (Projection, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return Projection{}, common.InvalidInput("semester_end must not be before semester_start")
	}

	exdates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		d, err := time.Parse(dateLayout, h)
		if err != nil {
			return Projection{}, common.InvalidInputf("holiday %q is not a YYYY-MM-DD date", h)
		}
		exdates = append(exdates, d)
	}

	proj := Projection{
		SemesterStart: start.Format(dateLayout),
		SemesterEnd:   end.Format(dateLayout),
		Sessions:      []Session{},
	}
	days := map[string]struct{}{}
	skipped := map[string]struct{}{}

	for _, day := range constants.Weekdays {
		classes := weekly[day]
		if len(classes) == 0 {
			continue
		}
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   start,
			Until:     end,
			Byweekday: []rrule.Weekday{rruleDays[day]},
		})
		if err != nil {
			return Projection{}, fmt.Errorf("weekly rule for %s: %w", day, err)
		}

		var set rrule.Set
		set.RRule(rule)
		for _, ex := range exdates {
			set.ExDate(ex)
		}

		for _, occ := range rule.All() {
			if isHoliday(occ, exdates) {
				skipped[occ.Format(dateLayout)] = struct{}{}
			}
		}

		for _, occ := range set.All() {
			date := occ.Format(dateLayout)
			days[date] = struct{}{}
			for _, c := range classes {
				proj.Sessions = append(proj.Sessions, Session{
					Date:    date,
					Day:     day,
					Subject: c.Subject,
					Time:    c.Time,
					Room:    c.Room,
				})
			}
		}
	}

	sort.SliceStable(proj.Sessions, func(i, j int) bool {
		return proj.Sessions[i].Date < proj.Sessions[j].Date
	})
	proj.TotalClasses = len(proj.Sessions)
	proj.WorkingDays = len(days)
	proj.HolidaysSkipped = len(skipped)
	return proj, nil
}

// Plan is a projection plus the attendance statistics it implies.
type Plan struct {
	Projection Projection             `json:"projection"`
	Stats      entity.AttendanceStats `json:"stats"`
}

// BuildPlan projects weekly over the semester and computes statistics for
// attended classes against target. A projection without classes is rejected.
func BuildPlan(weekly entity.WeeklySchedule, start, end time.Time, holidays []string, attended int, target float64) (Plan, error) {
	proj, err := Project(weekly, start, end, holidays)
	if err != nil {
		return Plan{}, err
	}
	if proj.TotalClasses == 0 {
		return Plan{}, common.NewAppError("NO_CLASSES", "No classes found in the data", common.ErrNoClasses)
	}
	stats, err := attendance.Compute(proj.TotalClasses, attended, target)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Projection: proj, Stats: stats}, nil
}

func isHoliday(t time.Time, holidays []time.Time) bool {
	for _, h := range holidays {
		if h.Equal(t) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
