package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor deletes uploads left behind by a crash between Acquire and Release.
type Janitor struct {
	dir    string
	maxAge time.Duration
	cron   *cron.Cron
	now    func() time.Time
	logger *slog.Logger
}

func NewJanitor(dir string, maxAge time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		dir:    dir,
		maxAge: maxAge,
		cron:   cron.New(),
		now:    time.Now,
		logger: logger,
	}
}

// Start runs Sweep on schedule (standard cron syntax or "@every 10m") until
// ctx is cancelled.
func (j *Janitor) Start(ctx context.Context, schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() {
		if _, err := j.Sweep(); err != nil {
			j.logger.Error("upload.janitor.error", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("janitor schedule %q: %w", schedule, err)
	}
	j.cron.Start()
	j.logger.Info("upload.janitor.start", "dir", j.dir, "schedule", schedule, "max_age", j.maxAge.String())

	go func() {
		<-ctx.Done()
		<-j.cron.Stop().Done()
		j.logger.Info("upload.janitor.stop")
	}()
	return nil
}

// Sweep removes regular files older than maxAge and returns how many it removed.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, e.Name())
		if err := os.Remove(path); err != nil {
			j.logger.Warn("upload.janitor.remove_failed", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		j.logger.Info("upload.janitor.sweep", "removed", removed)
	}
	return removed, nil
}
