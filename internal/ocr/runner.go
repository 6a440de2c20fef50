package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Runner executes the poppler and tesseract binaries. Tests swap it for a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// stderrLimit bounds how much diagnostic output a failed tool may log.
const stderrLimit = 8 << 10

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%s not installed: %w", name, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// one OpenMP thread per tesseract process
	cmd.Env = append(os.Environ(), "OMP_THREAD_LIMIT=1")

	began := time.Now()
	err = cmd.Run()
	elapsed := time.Since(began).Milliseconds()

	log := r.logger.With("tool", name, "argc", len(args), "elapsed_ms", elapsed)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		log.Debug("ocr.tool.done", "stdout_bytes", stdout.Len())
	case errors.As(err, &exitErr):
		log.Error("ocr.tool.exit", "exit_code", exitErr.ExitCode(), "stderr", clip(stderr.Bytes(), stderrLimit))
	default:
		log.Error("ocr.tool.failed", "err", err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func clip(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + " [clipped]"
}
