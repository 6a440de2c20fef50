package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/attendance-tracker/internal/async"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // coalesce rapid create/write bursts per file
	Ignore      []string      // directories never watched, e.g. the output dir
	Workers     int           // concurrent documents in Watch, default 2
}

// StartWatcher emits paths of readable documents created or rewritten under
// cfg.Roots. Both channels close when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	ignored := make(map[string]struct{}, len(cfg.Ignore))
	for _, p := range cfg.Ignore {
		ignored[filepath.Clean(p)] = struct{}{}
	}

	var initial []string
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if _, skip := ignored[filepath.Clean(path)]; skip {
					return filepath.SkipDir
				}
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path)) && !IsHidden(path) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("ingest.watch.add_root_failed", "root", r, "err", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_failed", "err", err)
			}
		}()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]time.Time{}
		var tick <-chan time.Time
		if cfg.Debounce > 0 {
			t := time.NewTicker(cfg.Debounce / 2)
			defer t.Stop()
			tick = t.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
						if _, skip := ignored[filepath.Clean(e.Name)]; !skip {
							if err := w.Add(e.Name); err != nil {
								logger.Warn("ingest.watch.add_dir_failed", "path", e.Name, "err", err)
							}
						}
						continue
					}
				}
				if !AllowedExt(filepath.Ext(e.Name)) || IsHidden(e.Name) {
					continue
				}
				if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
					continue
				}
				if cfg.Debounce <= 0 {
					if !emit(e.Name) {
						return
					}
					continue
				}
				pending[e.Name] = time.Now()
			case now := <-tick:
				for p, last := range pending {
					if now.Sub(last) < cfg.Debounce {
						continue
					}
					delete(pending, p)
					if !emit(p) {
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "err", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// Watch ingests every document that appears under cfg.Roots until ctx is
// done. Documents are processed by cfg.Workers workers; onResult is called
// from those workers. The output directory is never watched.
func (i *FSIngestor) Watch(ctx context.Context, cfg WatchConfig, onResult func(Result)) error {
	cfg.Ignore = append(cfg.Ignore, i.outDir)
	events, errs, err := StartWatcher(ctx, cfg, i.logger)
	if err != nil {
		return err
	}

	q := async.NewWorkerQueue(func(ctx context.Context, job async.Job) error {
		r, err := i.IngestPath(ctx, job.Path)
		if err != nil {
			r.Err = common.Message(err)
		}
		if onResult != nil {
			onResult(r)
		}
		return err
	}, i.logger, async.WithWorkers(cfg.Workers))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		q.Shutdown(shutdownCtx)
	}()
	i.logger.Info("ingest.watch.started", "roots", cfg.Roots, "out", i.outDir)

	for {
		select {
		case p, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
				return ctx.Err()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			i.logger.Warn("ingest.watch.degraded", "err", err)
		}
	}
}
