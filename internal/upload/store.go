// Package upload holds uploaded documents on disk for the length of one request.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

// Store writes uploads under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates dir if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// File is an acquired upload. Release must be called on every exit path.
type File struct {
	Path     string
	Name     string // client-supplied file name
	Ext      string // lower-case, without the dot
	Size     int64
	once     sync.Once
	logger   *slog.Logger
	released error
}

// Acquire copies r to a fresh uuid-named file that keeps the extension of
// filename. More than maxBytes of content fails with ErrTooLarge and leaves
// nothing behind. maxBytes <= 0 means unlimited.
func (s *Store) Acquire(filename string, r io.Reader, maxBytes int64) (*File, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(s.dir, name)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = common.NewAppError("TOO_LARGE", fmt.Sprintf("File exceeds %d bytes", maxBytes), common.ErrTooLarge)
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	s.logger.Info("upload.acquire", "file", filename, "path", path, "bytes", n)
	return &File{Path: path, Name: filename, Ext: ext, Size: n, logger: s.logger}, nil
}

// Release removes the file. It is safe to call more than once; only the first
// call does any work.
func (f *File) Release() error {
	if f == nil {
		return nil
	}
	f.once.Do(func() {
		err := os.Remove(f.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			f.released = err
			f.logger.Warn("upload.release.error", "path", f.Path, "error", err)
			return
		}
		f.logger.Info("upload.release", "path", f.Path)
	})
	return f.released
}
