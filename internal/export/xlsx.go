package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

// Sheet names, in workbook order.
const (
	SheetSummary   = "Summary"
	SheetCalendar  = "Calendar"
	SheetTimetable = "Timetable"
	SheetRecords   = "Records"
)

// Report is everything an attendance workbook can show. Stats is required.
type Report struct {
	Title          string                    `json:"title"`
	Stats          *entity.AttendanceStats   `json:"stats"`
	SemesterStart  string                    `json:"semester_start,omitempty"`
	SemesterEnd    string                    `json:"semester_end,omitempty"`
	CalendarEvents []entity.CalendarEvent    `json:"calendar_events,omitempty"`
	WeeklySchedule entity.WeeklySchedule     `json:"weekly_schedule,omitempty"`
	Records        []entity.AttendanceRecord `json:"records,omitempty"`
}

// AttendanceXLSX returns a workbook with Summary, Calendar and Timetable
// sheets, plus a Records sheet when the report carries records.
func (s *Service) AttendanceXLSX(ctx context.Context, r Report) ([]byte, error) {
	if r.Stats == nil {
		return nil, common.InvalidInput("stats is required")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	for _, name := range []string{SheetCalendar, SheetTimetable} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx new sheet %s: %w", name, err)
		}
	}
	if len(r.Records) > 0 {
		if _, err := f.NewSheet(SheetRecords); err != nil {
			return nil, fmt.Errorf("xlsx new sheet %s: %w", SheetRecords, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "Attendance Report"
	}
	st := r.Stats
	onTrack := "No"
	if st.OnTrack() {
		onTrack = "Yes"
	}
	summary := [][]any{
		{title, ""},
		{"Generated", s.now().UTC().Format("2006-01-02 15:04")},
		{"Semester Start", r.SemesterStart},
		{"Semester End", r.SemesterEnd},
		{"Total Classes", st.TotalClasses},
		{"Attended Classes", st.AttendedClasses},
		{"Attendance %", st.AttendancePercentage},
		{"Target %", st.TargetPercentage},
		{"Remaining Classes", st.RemainingClasses},
		{"Classes To Attend For Target", st.ClassesToAttendForTarget},
		{"On Track", onTrack},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(SheetSummary, "A1", "A11", bold)
	_ = f.SetColWidth(SheetSummary, "A", "A", 30)
	_ = f.SetColWidth(SheetSummary, "B", "B", 20)

	cal := [][]any{{"Date", "Name", "Type", "Time", "Description"}}
	for _, ev := range r.CalendarEvents {
		cal = append(cal, []any{ev.Date, ev.Name, string(ev.Type), ev.Time, truncate(ev.Description, 140)})
	}
	if err := writeRows(f, SheetCalendar, cal); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(SheetCalendar, "A1", "E1", bold)
	_ = f.SetColWidth(SheetCalendar, "A", "A", 12)
	_ = f.SetColWidth(SheetCalendar, "B", "B", 32)
	_ = f.SetColWidth(SheetCalendar, "E", "E", 48)

	tt := [][]any{{"Day", "Time", "Subject", "Duration", "Room", "Instructor"}}
	for _, day := range constants.Weekdays {
		for _, ev := range r.WeeklySchedule[day] {
			tt = append(tt, []any{day, ev.Time, ev.Subject, ev.Duration, ev.Room, ev.Instructor})
		}
	}
	if err := writeRows(f, SheetTimetable, tt); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(SheetTimetable, "A1", "F1", bold)
	_ = f.SetColWidth(SheetTimetable, "A", "B", 14)
	_ = f.SetColWidth(SheetTimetable, "C", "C", 28)
	_ = f.SetColWidth(SheetTimetable, "F", "F", 24)

	if len(r.Records) > 0 {
		rec := [][]any{{"Date", "Subject", "Status", "Notes"}}
		for _, x := range r.Records {
			rec = append(rec, []any{x.Date, x.Subject, string(x.Status), truncate(x.Notes, 140)})
		}
		if err := writeRows(f, SheetRecords, rec); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(SheetRecords, "A1", "D1", bold)
		_ = f.SetColWidth(SheetRecords, "D", "D", 48)
	}

	idx, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	common.LoggerFrom(ctx, s.logger).Info("export.xlsx.ok",
		"calendar_rows", len(r.CalendarEvents),
		"timetable_rows", len(tt)-1,
		"records", len(r.Records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
