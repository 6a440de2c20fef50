package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

// FSIngestor reads from the local filesystem and writes one JSON analysis
// per processed document into OutDir.
type FSIngestor struct {
	proc   Processor
	outDir string
	logger *slog.Logger
}

func NewFSIngestor(proc Processor, outDir string, logger *slog.Logger) (*FSIngestor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FSIngestor{proc: proc, outDir: outDir, logger: logger}, nil
}

// OutputPath is where the analysis of path is written.
func (i *FSIngestor) OutputPath(path string, kind Kind) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(i.outDir, base+"."+string(kind)+".json")
}

// IngestPath processes a single document.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (Result, error) {
	kind := Classify(path)
	out := Result{SourcePath: path, Kind: kind}

	if !AllowedExt(filepath.Ext(path)) {
		return out, common.InvalidInputf("unsupported or missing extension %q", filepath.Ext(path))
	}

	var (
		analysis any
		source   string
		err      error
	)
	switch kind {
	case KindCalendar:
		res, perr := i.proc.ProcessCalendar(ctx, path)
		analysis, source, err = res, res.Source, perr
	default:
		res, perr := i.proc.ProcessTimetable(ctx, path)
		analysis, source, err = res, res.Source, perr
	}
	if err != nil {
		i.logger.Warn("ingest.process.failed", "path", path, "kind", kind, "err", err)
		return out, err
	}

	b, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return out, fmt.Errorf("encode analysis: %w", err)
	}
	dst := i.OutputPath(path, kind)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return out, fmt.Errorf("write analysis: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return out, fmt.Errorf("write analysis: %w", err)
	}

	out.OutputPath = dst
	out.Source = source
	i.logger.Info("ingest.process.ok", "path", path, "kind", kind, "source", source, "out", dst)
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested and calls
// IngestPath for each readable document. Per-file failures are recorded in
// the results and do not stop the walk.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if filepath.Clean(path) == filepath.Clean(i.outDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = common.Message(err)
			results = append(results, r)
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
