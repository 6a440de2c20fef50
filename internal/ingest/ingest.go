// Package ingest processes calendar and timetable documents dropped into a
// directory and writes each analysis next to the others as JSON.
package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

// Kind is the document shape a file is processed as.
type Kind string

const (
	KindCalendar  Kind = "calendar"
	KindTimetable Kind = "timetable"
)

// Classify treats any file whose name mentions "calendar" as an academic
// calendar and everything else as a timetable.
func Classify(path string) Kind {
	if strings.Contains(strings.ToLower(filepath.Base(path)), "calendar") {
		return KindCalendar
	}
	return KindTimetable
}

// Result is the per-file ingest outcome.
type Result struct {
	SourcePath string `json:"source_path"`
	Kind       Kind   `json:"kind"`
	OutputPath string `json:"output_path,omitempty"`
	Source     string `json:"source,omitempty"`
	Err        string `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32 `json:"scanned"`
	Matched   uint32 `json:"matched"`
	Succeeded uint32 `json:"succeeded"`
	Failed    uint32 `json:"failed"`
}

// Processor is the part of the pipeline the ingestor drives.
type Processor interface {
	ProcessCalendar(ctx context.Context, path string) (entity.CalendarAnalysis, error)
	ProcessTimetable(ctx context.Context, path string) (entity.TimetableAnalysis, error)
}
