package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/normalize"
	"github.com/joseph-ayodele/attendance-tracker/internal/ocr"
	"github.com/joseph-ayodele/attendance-tracker/internal/pipeline"
	"github.com/joseph-ayodele/attendance-tracker/internal/upload"
)

const sampleTimetable = `
Monday 9:00-10:00 Dr. Smith Mathematics Room 101
Tuesday 10:00-11:00 Prof. Johnson Physics Lab 2
Wednesday 11:00-12:00 Mr. Brown Computer Science Room 203
Thursday 2:00-3:00 Ms. Davis English Literature Library
Friday 3:00-4:00 Dr. Wilson Chemistry Lab 1
`

// acquire validates the extension of a multipart file, then copies it into
// the upload store. Callers must Release the returned file.
func (s *HTTPServer) acquire(c *gin.Context, field string, check func(string) error) (*upload.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, common.InvalidInputf("%s is required", field)
	}
	if err := check(fh.Filename); err != nil {
		return nil, err
	}
	if s.deps.MaxUploadBytes > 0 && fh.Size > s.deps.MaxUploadBytes {
		return nil, common.NewAppError("TOO_LARGE", "File exceeds the upload size limit", common.ErrTooLarge)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, common.NewAppError("UPLOAD_ERROR", "could not read upload", err)
	}
	defer src.Close()
	return s.deps.Uploads.Acquire(fh.Filename, src, s.deps.MaxUploadBytes)
}

func (s *HTTPServer) uploadCalendar(c *gin.Context) {
	f, err := s.acquire(c, "file", pipeline.CheckCalendarFile)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Release()

	res, err := s.deps.Processor.ProcessCalendar(c.Request.Context(), f.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) uploadTimetable(c *gin.Context) {
	f, err := s.acquire(c, "file", pipeline.CheckTimetableFile)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Release()

	res, err := s.deps.Processor.ProcessTimetable(c.Request.Context(), f.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) processCombined(c *gin.Context) {
	cal, err := s.acquire(c, "calendar_file", pipeline.CheckCalendarFile)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer cal.Release()

	tt, err := s.acquire(c, "timetable_file", pipeline.CheckTimetableFile)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer tt.Release()

	res, err := s.deps.Processor.ProcessCombined(c.Request.Context(), cal.Path, tt.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) debugPDF(c *gin.Context) {
	f, err := s.acquire(c, "file", pipeline.CheckCalendarFile)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Release()

	ctx := c.Request.Context()
	rep, err := s.deps.Processor.DiagnosePDF(ctx, f.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.deps.Processor.ExtractText(ctx, f.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":        f.Name,
		"text_length":     len(res.Text),
		"method":          res.Method,
		"pages":           res.Pages,
		"first_500_chars": ocr.Preview(res.Text, 500),
		"last_500_chars":  tail(res.Text, 500),
		"tiers":           rep,
	})
}

func (s *HTTPServer) debugTimetable(c *gin.Context) {
	f, err := s.acquire(c, "file", pipeline.CheckTimetableFile)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Release()

	ctx := c.Request.Context()
	res, err := s.deps.Processor.ExtractText(ctx, f.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	analysis := s.deps.Processor.Analyzer.Timetable(ctx, res.Text)
	c.JSON(http.StatusOK, gin.H{
		"filename":         f.Name,
		"text_length":      len(res.Text),
		"method":           res.Method,
		"extracted_text":   ocr.Preview(res.Text, constants.ExtractedTextPreview),
		"analysis":         analysis,
		"source":           analysis.Source,
		"timetable_events": analysis.TimetableEvents,
		"weekly_schedule":  analysis.WeeklySchedule,
		"confidence_score": analysis.ConfidenceScore,
	})
}

// testSubjectExtraction runs the configured analyzer and the heuristic
// fallback over the same canned timetable so the two can be compared.
func (s *HTTPServer) testSubjectExtraction(c *gin.Context) {
	analysis := s.deps.Processor.Analyzer.Timetable(c.Request.Context(), sampleTimetable)
	fallback := normalize.TimetableFallback(sampleTimetable)
	c.JSON(http.StatusOK, gin.H{
		"sample_text":       sampleTimetable,
		"analysis":          analysis,
		"analysis_source":   analysis.Source,
		"fallback_analysis": fallback,
		"comparison": gin.H{
			"subjects":             subjects(analysis.TimetableEvents),
			"instructors":          instructors(analysis.TimetableEvents),
			"fallback_subjects":    subjects(fallback.TimetableEvents),
			"fallback_instructors": instructors(fallback.TimetableEvents),
		},
	})
}

func subjects(events []entity.TimetableEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Subject)
	}
	return out
}

func instructors(events []entity.TimetableEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Instructor)
	}
	return out
}

// tail returns the last n runes of s, or "" when s is no longer than n.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return ""
	}
	return string(r[len(r)-n:])
}
