package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
)

// Config for the Gemini generateContent client.
type Config struct {
	APIKey      string
	BaseURL     string // default https://generativelanguage.googleapis.com/v1beta
	Model       string // e.g., "gemini-1.5-pro"
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

// Name implements llm.Backend.
func (c *Client) Name() string { return llm.ProviderGemini }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Complete implements llm.Backend.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)

	body := map[string]any{
		"contents": []content{{Parts: []part{{Text: prompt}}}},
		"generationConfig": map[string]any{
			"temperature":      c.cfg.Temperature,
			"maxOutputTokens":  c.cfg.MaxTokens,
			"responseMimeType": "application/json",
		},
	}
	headers := http.Header{}
	headers.Set("x-goog-api-key", c.cfg.APIKey)

	raw, err := llm.PostJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			c.logger.Error("llm.complete.http_error",
				"provider", llm.ProviderGemini, "status", se.Status, "retryable", se.Retryable(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	out := strings.TrimSpace(b.String())
	c.logger.Info("llm.complete.ok",
		"provider", llm.ProviderGemini,
		"bytes", len(out),
		"finish_reason", gr.Candidates[0].FinishReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
