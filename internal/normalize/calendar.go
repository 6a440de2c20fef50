package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

var (
	reInstruction = regexp.MustCompile(`(?is)Academic\s+Instruction\s+Duration.*?` +
		`(\d{1,2}\s+[a-z]+\s+\d{4})\s*\(\s*[a-z]+\s*\)\s*` +
		`(\d{1,2}\s+[a-z]+\s+\d{4})\s*\(\s*[a-z]+\s*\)\s*` +
		`(\d+)\s+days`)
	reDayCount = regexp.MustCompile(`(?i)(\d+)\s+days`)
	reSpaces   = regexp.MustCompile(`\s+`)
	reSept     = regexp.MustCompile(`(?i)\bsept\b`)
)

const (
	// dayCountTolerance absorbs holidays the document does not list.
	dayCountTolerance = 2
	minEstimatedDays  = 30
	maxEstimateEvents = 30

	calendarRangeConfidence    = 0.7
	// The estimate sums loose "N days" mentions and emits placeholder dates,
	// so it is scored as a guess (0.3) rather than at the 0.7 given to
	// instruction ranges checked against real dates.
	calendarEstimateConfidence = 0.3
	calendarEmptyConfidence    = 0.2
)

// CalendarFallback extracts class days from a calendar without any AI help.
//
// Instruction ranges whose non-Sunday day count lies within two days of the
// declared count become one lecture per day. Failing that, every "N Days"
// with N >= 30 is summed and up to 30 placeholder events are emitted on
// fabricated dates; those dates are sequence markers, not real calendar days.
func CalendarFallback(text string) entity.CalendarAnalysis {
	res := entity.CalendarAnalysis{
		Events: []entity.CalendarEvent{},
		Source: entity.SourceFallback,
	}

	var first, last time.Time
	for _, m := range reInstruction.FindAllStringSubmatch(text, -1) {
		start, err1 := parseDayMonthYear(m[1])
		end, err2 := parseDayMonthYear(m[2])
		declared, err3 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		days := ClassDays(start, end)
		if abs(len(days)-declared) > dayCountTolerance {
			continue
		}
		for _, d := range days {
			res.Events = append(res.Events, entity.CalendarEvent{
				Name:        fmt.Sprintf("Class Day %d", len(res.Events)+1),
				Date:        d.Format("2006-01-02"),
				Type:        constants.EventLecture,
				Description: "Regular class (auto-generated)",
			})
		}
		res.TotalWorkingDays += len(days)
		if len(days) > 0 {
			if first.IsZero() || days[0].Before(first) {
				first = days[0]
			}
			if days[len(days)-1].After(last) {
				last = days[len(days)-1]
			}
		}
	}

	if res.TotalWorkingDays > 0 {
		res.SemesterStart = first.Format("2006-01-02")
		res.SemesterEnd = last.Format("2006-01-02")
		res.ConfidenceScore = calendarRangeConfidence
		return res
	}

	total := 0
	for _, m := range reDayCount.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= minEstimatedDays {
			total += n
		}
	}
	if total == 0 {
		res.ConfidenceScore = calendarEmptyConfidence
		return res
	}

	for i := 0; i < min(total, maxEstimateEvents); i++ {
		res.Events = append(res.Events, entity.CalendarEvent{
			Name:        fmt.Sprintf("Estimated Class Day %d", i+1),
			Date:        fmt.Sprintf("2025-%02d-%02d", i/30+1, i%30+1),
			Type:        constants.EventLecture,
			Description: "Estimated from academic calendar",
		})
	}
	res.TotalWorkingDays = total
	res.ConfidenceScore = calendarEstimateConfidence
	return res
}

// ClassDays lists every day from start to end inclusive, skipping Sundays.
func ClassDays(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			out = append(out, d)
		}
	}
	return out
}

func parseDayMonthYear(s string) (time.Time, error) {
	s = reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	// "Sept" is common on academic calendars but unknown to time.Parse.
	s = reSept.ReplaceAllString(s, "Sep")
	var err error
	for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
