// Package normalize turns extracted document text into typed calendar and
// timetable analyses, through the configured AI backend when there is one and
// through deterministic heuristics otherwise.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
)

// Observer is told which path produced each analysis.
type Observer interface {
	ObserveAnalysis(mode, source string, elapsed time.Duration)
}

type Normalizer struct {
	sel      llm.Selection
	logger   *slog.Logger
	observer Observer
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(n *Normalizer) { n.observer = o }
}

func New(sel llm.Selection, logger *slog.Logger, opts ...Option) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{sel: sel, logger: logger}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Result holds exactly one of the two analysis variants.
type Result struct {
	Mode      llm.Mode                  `json:"mode"`
	Calendar  *entity.CalendarAnalysis  `json:"calendar,omitempty"`
	Timetable *entity.TimetableAnalysis `json:"timetable,omitempty"`
}

// Analyze dispatches on mode.
func (n *Normalizer) Analyze(ctx context.Context, text string, mode llm.Mode) (Result, error) {
	switch mode {
	case llm.ModeCalendar:
		cal := n.Calendar(ctx, text)
		return Result{Mode: mode, Calendar: &cal}, nil
	case llm.ModeTimetable:
		tt := n.Timetable(ctx, text)
		return Result{Mode: mode, Timetable: &tt}, nil
	default:
		return Result{}, common.InvalidInputf("unknown mode %q", mode)
	}
}

// Calendar never fails: any AI problem silently selects the heuristic path.
func (n *Normalizer) Calendar(ctx context.Context, text string) entity.CalendarAnalysis {
	start := time.Now()
	logger := common.LoggerFrom(ctx, n.logger)

	res, err := n.calendarFromAI(ctx, text, logger)
	if err != nil {
		logger.Warn("normalize.calendar.fallback", "reason", err.Error())
		res = CalendarFallback(text)
	}
	res.ExtractedText = preview(text, constants.ExtractedTextPreview)

	n.observe(llm.ModeCalendar, res.Source, start)
	logger.Info("normalize.calendar.ok",
		"source", res.Source,
		"events", len(res.Events),
		"working_days", res.TotalWorkingDays,
		"confidence", res.ConfidenceScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// Timetable never fails: any AI problem silently selects the heuristic path.
func (n *Normalizer) Timetable(ctx context.Context, text string) entity.TimetableAnalysis {
	start := time.Now()
	logger := common.LoggerFrom(ctx, n.logger)

	res, err := n.timetableFromAI(ctx, text, logger)
	if err != nil {
		logger.Warn("normalize.timetable.fallback", "reason", err.Error())
		res = TimetableFallback(text)
	}
	res.ExtractedText = preview(text, constants.ExtractedTextPreview)

	n.observe(llm.ModeTimetable, res.Source, start)
	logger.Info("normalize.timetable.ok",
		"source", res.Source,
		"events", len(res.TimetableEvents),
		"working_days", res.TotalWorkingDays,
		"confidence", res.ConfidenceScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (n *Normalizer) calendarFromAI(ctx context.Context, text string, logger *slog.Logger) (entity.CalendarAnalysis, error) {
	raw, err := n.complete(ctx, llm.ModeCalendar, text)
	if err != nil {
		return entity.CalendarAnalysis{}, err
	}
	return llm.ParseCalendar(raw, logger)
}

func (n *Normalizer) timetableFromAI(ctx context.Context, text string, logger *slog.Logger) (entity.TimetableAnalysis, error) {
	raw, err := n.complete(ctx, llm.ModeTimetable, text)
	if err != nil {
		return entity.TimetableAnalysis{}, err
	}
	return llm.ParseTimetable(raw, logger)
}

func (n *Normalizer) complete(ctx context.Context, mode llm.Mode, text string) (string, error) {
	if !n.sel.Enabled() {
		return "", fmt.Errorf("no ai backend configured")
	}
	raw, err := n.sel.Backend.Complete(ctx, llm.BuildPrompt(mode, text))
	if err != nil {
		return "", fmt.Errorf("%s: %w", n.sel.Backend.Name(), err)
	}
	return raw, nil
}

func (n *Normalizer) observe(mode llm.Mode, source string, start time.Time) {
	if n.observer != nil {
		n.observer.ObserveAnalysis(string(mode), source, time.Since(start))
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
