package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
	"github.com/joseph-ayodele/attendance-tracker/internal/normalize"
	"github.com/joseph-ayodele/attendance-tracker/internal/ocr"
)

type stubExtractor struct {
	texts map[string]string
	err   error
	calls []string
}

func (s *stubExtractor) Extract(_ context.Context, path string) (ocr.ExtractionResult, error) {
	s.calls = append(s.calls, path)
	if s.err != nil {
		return ocr.ExtractionResult{}, s.err
	}
	return ocr.ExtractionResult{Text: s.texts[path], Method: ocr.MethodTextLayer, Pages: 1}, nil
}

func (s *stubExtractor) Diagnose(_ context.Context, path string) (ocr.TierReport, error) {
	return ocr.TierReport{TextLayerChars: len(s.texts[path]), SelectedMethod: ocr.MethodTextLayer}, s.err
}

const (
	calendarText  = "Academic Instruction Duration 2 June 2025 (Monday) 23 August 2025 (Saturday) 70 Days"
	timetableText = "Monday 9:00 Dr. Smith Mathematics Room 101\nMonday 10:00 Physics\nTuesday 9:00 Chemistry\nTuesday 11:00 Biology"
)

func newProcessor(tx *stubExtractor) *Processor {
	return NewProcessor(nil, tx, normalize.New(llm.None(), nil))
}

func TestProcessCalendar(t *testing.T) {
	tx := &stubExtractor{texts: map[string]string{"/tmp/cal.pdf": calendarText}}
	p := newProcessor(tx)

	res, err := p.ProcessCalendar(context.Background(), "/tmp/cal.pdf")
	require.NoError(t, err)
	assert.Equal(t, 72, res.TotalWorkingDays)
	assert.Equal(t, calendarText, res.ExtractedText)
}

func TestProcessCalendar_RejectsNonPDFBeforeExtraction(t *testing.T) {
	tx := &stubExtractor{}
	p := newProcessor(tx)

	_, err := p.ProcessCalendar(context.Background(), "/tmp/cal.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Equal(t, "Only PDF files are supported", common.Message(err))
	assert.Empty(t, tx.calls)
}

func TestProcessTimetable(t *testing.T) {
	tx := &stubExtractor{texts: map[string]string{"/tmp/tt.JPG": timetableText}}
	p := newProcessor(tx)

	res, err := p.ProcessTimetable(context.Background(), "/tmp/tt.JPG")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalWorkingDays)
	assert.Len(t, res.WeeklySchedule["Monday"], 2)

	_, err = p.ProcessTimetable(context.Background(), "/tmp/tt.heic")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestProcess_NoText(t *testing.T) {
	tx := &stubExtractor{texts: map[string]string{"/tmp/blank.pdf": "  \n "}}
	p := newProcessor(tx)

	_, err := p.ProcessCalendar(context.Background(), "/tmp/blank.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoText))
	assert.Equal(t, "No text could be extracted from the PDF", common.Message(err))

	_, err = p.ProcessTimetable(context.Background(), "/tmp/blank.pdf")
	assert.True(t, errors.Is(err, common.ErrNoText))
}

func TestProcess_UnexpectedFailure(t *testing.T) {
	tx := &stubExtractor{err: errors.New("disk on fire")}
	p := newProcessor(tx)

	_, err := p.ProcessCalendar(context.Background(), "/tmp/cal.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInternal))
	assert.Contains(t, common.Message(err), "Error processing calendar")
}

func TestProcessCombined(t *testing.T) {
	tx := &stubExtractor{texts: map[string]string{
		"/tmp/cal.pdf": calendarText,
		"/tmp/tt.png":  timetableText,
	}}
	p := newProcessor(tx)

	res, err := p.ProcessCombined(context.Background(), "/tmp/cal.pdf", "/tmp/tt.png")
	require.NoError(t, err)

	assert.Equal(t, []string{"/tmp/cal.pdf", "/tmp/tt.png"}, tx.calls, "calendar first")
	assert.Equal(t, 72, res.CalendarWorkingDays)
	assert.Equal(t, 2, res.TimetableWorkingDays)
	assert.Equal(t, 2, res.ClassesPerWorkingDay)
	assert.Equal(t, 144, res.TotalClasses)
	assert.InDelta(t, 0.5, res.ConfidenceScore, 1e-9)
}

func TestProcessCombined_ValidatesBothFirst(t *testing.T) {
	tx := &stubExtractor{}
	p := newProcessor(tx)

	_, err := p.ProcessCombined(context.Background(), "/tmp/cal.pdf", "/tmp/tt.docx")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Empty(t, tx.calls)
}

func TestDiagnosePDF(t *testing.T) {
	tx := &stubExtractor{texts: map[string]string{"/tmp/cal.pdf": calendarText}}
	p := newProcessor(tx)

	rep, err := p.DiagnosePDF(context.Background(), "/tmp/cal.pdf")
	require.NoError(t, err)
	assert.Equal(t, ocr.MethodTextLayer, rep.SelectedMethod)

	_, err = p.DiagnosePDF(context.Background(), "/tmp/cal.png")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}
