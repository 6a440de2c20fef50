package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

// maxResponseBytes caps how much of a provider reply is read into memory.
const maxResponseBytes = 4 << 20

// StatusError is returned by PostJSON when the provider answers outside 2xx.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the provider signalled a transient condition.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// PostJSON encodes payload, posts it to endpoint and returns the reply body.
// The request id carried by ctx is forwarded as X-Request-ID so provider
// calls can be correlated with the inbound upload that triggered them.
func PostJSON(ctx context.Context, client *http.Client, endpoint string, payload any, headers http.Header, logger *slog.Logger) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	callID := common.RequestIDFromContext(ctx)
	if callID == "" {
		callID = uuid.NewString()
	}
	logger = common.LoggerFrom(ctx, logger).With("call_id", callID)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode provider payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", callID)

	began := time.Now()
	logger.Debug("llm.provider.send", "endpoint", endpoint, "payload_bytes", len(encoded))
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.provider.unreachable", "err", err, "elapsed_ms", time.Since(began).Milliseconds())
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read provider reply: %w", err)
	}
	logger.Info("llm.provider.reply",
		"status", resp.StatusCode,
		"reply_bytes", len(reply),
		"elapsed_ms", time.Since(began).Milliseconds(),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return reply, &StatusError{Status: resp.StatusCode, Body: preview(reply, 200)}
	}
	return reply, nil
}

func preview(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
