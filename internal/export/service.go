// Package export renders analyses and statistics as XLSX workbooks and
// iCalendar files.
package export

import (
	"log/slog"
	"time"
)

// Service produces export bytes; it holds no state beyond its clock.
type Service struct {
	now    func() time.Time
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{now: time.Now, logger: logger}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
