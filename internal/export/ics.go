package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/schedule"
)

const productID = "-//attendance-tracker//export//EN"

// uidSpace makes event UIDs stable across exports of the same data.
var uidSpace = uuid.MustParse("6f1c2a52-52d6-4a41-9d0e-6a9b8c1f2e44")

// CalendarICS renders calendar events as VEVENTs. Events with a time last an
// hour; the rest are all-day. Events with unparseable dates are skipped.
func (s *Service) CalendarICS(ctx context.Context, events []entity.CalendarEvent, name string) ([]byte, error) {
	cal := newCalendar(name, "Academic Calendar")
	stamp := s.now().UTC()

	written := 0
	for i, ev := range events {
		day, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			continue
		}
		uid := uuid.NewSHA1(uidSpace, []byte(fmt.Sprintf("cal|%d|%s|%s", i, ev.Date, ev.Name))).String()
		vev := cal.AddEvent(uid)
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Name)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.Type != "" {
			vev.SetProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(ev.Type)))
		}
		if at, ok := clockOn(day, ev.Time); ok {
			vev.SetStartAt(at)
			vev.SetEndAt(at.Add(time.Hour))
		} else {
			vev.SetAllDayStartAt(day)
			vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
		written++
	}

	common.LoggerFrom(ctx, s.logger).Info("export.ics.ok", "kind", "calendar", "events", written)
	return []byte(cal.Serialize()), nil
}

// ScheduleICS renders every projected session as a timed VEVENT. Sessions
// without a parseable start time become all-day events.
func (s *Service) ScheduleICS(ctx context.Context, proj schedule.Projection, name string) ([]byte, error) {
	cal := newCalendar(name, "Class Schedule")
	stamp := s.now().UTC()

	for i, sess := range proj.Sessions {
		day, err := time.Parse("2006-01-02", sess.Date)
		if err != nil {
			return nil, common.InvalidInputf("session %d has invalid date %q", i, sess.Date)
		}
		uid := uuid.NewSHA1(uidSpace, []byte(fmt.Sprintf("sess|%d|%s|%s", i, sess.Date, sess.Subject))).String()
		vev := cal.AddEvent(uid)
		vev.SetDtStampTime(stamp)
		vev.SetSummary(sess.Subject)
		if sess.Room != "" {
			vev.SetLocation(sess.Room)
		}
		start, end, ok := sessionSpan(day, sess.Time)
		if ok {
			vev.SetStartAt(start)
			vev.SetEndAt(end)
		} else {
			vev.SetAllDayStartAt(day)
			vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	common.LoggerFrom(ctx, s.logger).Info("export.ics.ok", "kind", "schedule", "events", len(proj.Sessions))
	return []byte(cal.Serialize()), nil
}

func newCalendar(name, fallback string) *ics.Calendar {
	if name == "" {
		name = fallback
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(name)
	return cal
}

// clockOn combines a date with an "H:MM" or "HH:MM" clock time.
func clockOn(day time.Time, clock string) (time.Time, bool) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}

// sessionSpan reads "09:00-10:30" or a bare start time (one hour long).
func sessionSpan(day time.Time, span string) (time.Time, time.Time, bool) {
	from, to, isRange := strings.Cut(span, "-")
	start, ok := clockOn(day, from)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if isRange {
		if end, ok := clockOn(day, to); ok && end.After(start) {
			return start, end, true
		}
	}
	return start, start.Add(time.Hour), true
}
