package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

var dayAliases = map[string]string{
	"monday": "Monday", "mon": "Monday", "m": "Monday",
	"tuesday": "Tuesday", "tue": "Tuesday", "tues": "Tuesday", "t": "Tuesday",
	"wednesday": "Wednesday", "wed": "Wednesday", "w": "Wednesday",
	"thursday": "Thursday", "thu": "Thursday", "thur": "Thursday", "thurs": "Thursday", "th": "Thursday",
	"friday": "Friday", "fri": "Friday", "f": "Friday",
	"saturday": "Saturday", "sat": "Saturday", "s": "Saturday",
}

var honorifics = []string{"dr.", "prof.", "mr.", "ms.", "mrs.", "miss"}

// subjectKeywords is searched in order; the first hit wins.
var subjectKeywords = []string{
	"math", "physics", "chemistry", "biology", "computer", "english",
	"history", "geography", "economics", "science", "literature",
	"programming", "calculus", "algebra", "statistics",
}

var (
	reClock     = regexp.MustCompile(`^\d{1,2}[:.]\d{2}`)
	reTimeRange = regexp.MustCompile(`(\d{1,2}:\d{2})(?:\s*-\s*(\d{1,2}:\d{2}))?`)
	reRoom      = regexp.MustCompile(`(?i)\b(room|lab|hall)\s*([A-Za-z0-9-]+)`)
)

const (
	defaultClassTime            = "09:00-10:00"
	defaultClassDuration        = "1 hour"
	defaultSubject              = "Subject"
	timetableFallbackConfidence = 0.3
)

// TimetableFallback reads one class per day token per line. The output only
// depends on text.
func TimetableFallback(text string) entity.TimetableAnalysis {
	events := []entity.TimetableEvent{}
	for _, line := range strings.Split(text, "\n") {
		events = append(events, parseTimetableLine(line)...)
	}

	ws := entity.ScheduleFromEvents(events)
	return entity.TimetableAnalysis{
		TimetableEvents:  events,
		TotalWorkingDays: len(ws.ActiveDays()),
		WeeklySchedule:   ws,
		ConfidenceScore:  timetableFallbackConfidence,
		Source:           entity.SourceFallback,
	}
}

func parseTimetableLine(line string) []entity.TimetableEvent {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}

	var days []string
	seen := map[string]bool{}
	candidate := -1
	for i, tok := range tokens {
		if day, ok := dayToken(tok); ok {
			if !seen[day] {
				seen[day] = true
				days = append(days, day)
			}
			continue
		}
		if candidate < 0 && isWordToken(tok) {
			candidate = i
		}
	}
	if len(days) == 0 {
		return nil
	}

	subject, instructor := defaultSubject, ""
	if candidate >= 0 {
		cand := tokens[candidate]
		if hasHonorific(cand) {
			instructor = cand
			nameEnd := candidate
			if next := candidate + 1; isBareHonorific(cand) && next < len(tokens) &&
				isWordToken(tokens[next]) && !hasSubjectKeyword(tokens[next]) {
				instructor += " " + trimPunct(tokens[next])
				nameEnd = next
			}
			subject = keywordSubject(tokens, candidate, nameEnd)
		} else {
			subject = titleCase(trimPunct(cand))
		}
	}

	classTime := defaultClassTime
	if m := reTimeRange.FindStringSubmatch(line); m != nil {
		classTime = m[1]
		if m[2] != "" {
			classTime += "-" + m[2]
		}
	}

	room := ""
	if m := reRoom.FindStringSubmatch(line); m != nil {
		room = titleCase(m[1]) + " " + m[2]
	}

	out := make([]entity.TimetableEvent, 0, len(days))
	for _, day := range days {
		out = append(out, entity.TimetableEvent{
			Subject:    subject,
			Day:        day,
			Time:       classTime,
			Duration:   defaultClassDuration,
			Room:       room,
			Instructor: instructor,
		})
	}
	return out
}

// keywordSubject skips the instructor tokens [from, to] so a lecturer named
// after a field is never reported as the subject.
func keywordSubject(tokens []string, from, to int) string {
	for _, kw := range subjectKeywords {
		for i, tok := range tokens {
			if i >= from && i <= to {
				continue
			}
			word := trimPunct(tok)
			if strings.Contains(strings.ToLower(word), kw) {
				return titleCase(word)
			}
		}
	}
	return defaultSubject
}

func dayToken(tok string) (string, bool) {
	day, ok := dayAliases[strings.ToLower(trimPunct(tok))]
	return day, ok
}

// isWordToken is true for tokens that can name a subject: they carry a letter
// and are not clock times or am/pm markers.
func isWordToken(tok string) bool {
	if reClock.MatchString(tok) {
		return false
	}
	switch strings.ToLower(trimPunct(tok)) {
	case "am", "pm", "a.m", "p.m":
		return false
	}
	return strings.IndexFunc(tok, unicode.IsLetter) >= 0
}

func hasHonorific(tok string) bool {
	lower := strings.ToLower(tok)
	for _, h := range honorifics {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// isBareHonorific is true for "Dr." or "Prof" on their own; OCR often merges
// the name into the same token ("Dr.Smith").
func isBareHonorific(tok string) bool {
	lower := strings.ToLower(tok)
	for _, h := range honorifics {
		if lower == h || lower == strings.TrimSuffix(h, ".") {
			return true
		}
	}
	return false
}

func hasSubjectKeyword(tok string) bool {
	lower := strings.ToLower(tok)
	for _, kw := range subjectKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) && r != '-'
	})
}

// titleCase builds a Caser per call; Casers are stateful and not safe to share.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
