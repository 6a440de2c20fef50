// Package provider turns configuration into the AI backend selection used for
// the lifetime of the process.
package provider

import (
	"log/slog"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm/gemini"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm/openai"
)

// Select picks exactly one backend. An explicit provider wins; "auto" prefers
// OpenAI, then Gemini, by which key is present.
func Select(cfg common.LLMConfig, logger *slog.Logger) llm.Selection {
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Provider
	if name == "" || name == "auto" {
		switch {
		case cfg.OpenAIKey != "":
			name = llm.ProviderOpenAI
		case cfg.GeminiKey != "":
			name = llm.ProviderGemini
		default:
			name = llm.ProviderNone
		}
	}

	var sel llm.Selection
	switch name {
	case llm.ProviderOpenAI:
		sel = llm.Selection{Provider: name, Backend: openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger)}
	case llm.ProviderGemini:
		sel = llm.Selection{Provider: name, Backend: gemini.NewClient(gemini.Config{
			APIKey:      cfg.GeminiKey,
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger)}
	default:
		sel = llm.None()
	}

	logger.Info("llm.backend.selected", "provider", sel.Provider)
	return sel
}
