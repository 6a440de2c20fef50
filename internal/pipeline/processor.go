// Package pipeline runs an uploaded document through text extraction and
// normalization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/attendance"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/ocr"
)

// TextExtractor turns a document on disk into text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
	Diagnose(ctx context.Context, path string) (ocr.TierReport, error)
}

// Analyzer turns text into typed analyses. It never fails.
type Analyzer interface {
	Calendar(ctx context.Context, text string) entity.CalendarAnalysis
	Timetable(ctx context.Context, text string) entity.TimetableAnalysis
}

// Processor coordinates text extraction then normalization.
type Processor struct {
	Logger   *slog.Logger
	OCR      TextExtractor
	Analyzer Analyzer
}

func NewProcessor(logger *slog.Logger, tx TextExtractor, an Analyzer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, OCR: tx, Analyzer: an}
}

// CheckCalendarFile rejects anything but PDFs.
func CheckCalendarFile(name string) error {
	if !constants.IsAllowed(constants.CalendarExtensions, filepath.Ext(name)) {
		return common.InvalidInput("Only PDF files are supported")
	}
	return nil
}

// CheckTimetableFile rejects anything but PDFs and JPG/PNG images.
func CheckTimetableFile(name string) error {
	if !constants.IsAllowed(constants.AllowedExtensions, filepath.Ext(name)) {
		return common.InvalidInput("Only PDF and image files (JPG, JPEG, PNG) are supported")
	}
	return nil
}

// ProcessCalendar extracts and normalizes an academic calendar PDF.
func (p *Processor) ProcessCalendar(ctx context.Context, path string) (entity.CalendarAnalysis, error) {
	if err := CheckCalendarFile(path); err != nil {
		return entity.CalendarAnalysis{}, err
	}
	text, err := p.text(ctx, path, "calendar", "No text could be extracted from the PDF")
	if err != nil {
		return entity.CalendarAnalysis{}, err
	}
	return p.Analyzer.Calendar(ctx, text), nil
}

// ProcessTimetable extracts and normalizes a timetable PDF or image.
func (p *Processor) ProcessTimetable(ctx context.Context, path string) (entity.TimetableAnalysis, error) {
	if err := CheckTimetableFile(path); err != nil {
		return entity.TimetableAnalysis{}, err
	}
	text, err := p.text(ctx, path, "timetable", "No text could be extracted from the file")
	if err != nil {
		return entity.TimetableAnalysis{}, err
	}
	return p.Analyzer.Timetable(ctx, text), nil
}

// ProcessCombined fully processes the calendar before touching the timetable.
func (p *Processor) ProcessCombined(ctx context.Context, calendarPath, timetablePath string) (entity.CombinedProcessingResult, error) {
	if err := CheckCalendarFile(calendarPath); err != nil {
		return entity.CombinedProcessingResult{}, err
	}
	if err := CheckTimetableFile(timetablePath); err != nil {
		return entity.CombinedProcessingResult{}, err
	}

	cal, err := p.ProcessCalendar(ctx, calendarPath)
	if err != nil {
		return entity.CombinedProcessingResult{}, err
	}
	tt, err := p.ProcessTimetable(ctx, timetablePath)
	if err != nil {
		return entity.CombinedProcessingResult{}, err
	}

	res := attendance.Combine(cal, tt)
	common.LoggerFrom(ctx, p.Logger).Info("pipeline.combined.ok",
		"calendar_days", res.CalendarWorkingDays,
		"per_day", res.ClassesPerWorkingDay,
		"total_classes", res.TotalClasses,
	)
	return res, nil
}

// ExtractText runs only the extraction stage.
func (p *Processor) ExtractText(ctx context.Context, path string) (ocr.ExtractionResult, error) {
	res, err := p.OCR.Extract(ctx, path)
	if err != nil {
		return res, processingError("document", err)
	}
	return res, nil
}

// DiagnosePDF reports what each PDF extraction tier produced.
func (p *Processor) DiagnosePDF(ctx context.Context, path string) (ocr.TierReport, error) {
	if err := CheckCalendarFile(path); err != nil {
		return ocr.TierReport{}, err
	}
	rep, err := p.OCR.Diagnose(ctx, path)
	if err != nil {
		return rep, processingError("PDF", err)
	}
	return rep, nil
}

func (p *Processor) text(ctx context.Context, path, kind, emptyMsg string) (string, error) {
	logger := common.LoggerFrom(ctx, p.Logger)

	res, err := p.OCR.Extract(ctx, path)
	if err != nil {
		logger.Error("pipeline.extract.failed", "kind", kind, "path", path, "error", err)
		return "", processingError(kind, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		logger.Warn("pipeline.extract.empty", "kind", kind, "path", path, "warnings", res.Warnings)
		return "", common.NewAppError("NO_TEXT", emptyMsg, common.ErrNoText)
	}
	logger.Info("pipeline.extract.ok",
		"kind", kind,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
	)
	return res.Text, nil
}

// processingError keeps application errors as they are and turns anything
// else into a generic processing failure.
func processingError(kind string, err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.NewAppError("PROCESSING_ERROR", fmt.Sprintf("Error processing %s: %v", kind, err), fmt.Errorf("%w: %w", common.ErrInternal, err))
}
