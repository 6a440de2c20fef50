package llm

import "context"

// Mode selects which document shape the model is asked to produce.
type Mode string

const (
	ModeCalendar  Mode = "calendar"
	ModeTimetable Mode = "timetable"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeCalendar || m == ModeTimetable
}

// Backend is a single text-in/text-out call to an AI service.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Selection is the backend chosen once at startup and handed to the
// normalizer. A zero Selection means heuristics only.
type Selection struct {
	Provider string
	Backend  Backend
}

// Enabled reports whether an AI backend is configured.
func (s Selection) Enabled() bool {
	return s.Backend != nil
}

// None is the selection used when no credential is configured.
func None() Selection {
	return Selection{Provider: ProviderNone}
}
