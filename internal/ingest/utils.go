package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/constants"
)

// AllowedExt checks if a file extension is one the pipeline can read.
func AllowedExt(ext string) bool {
	return constants.IsAllowed(constants.AllowedExtensions, ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
