package common

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFrom(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithUsername(WithRequestID(context.Background(), "r-1"), "ada")
	assert.Equal(t, "r-1", RequestIDFromContext(ctx))
	assert.Equal(t, "ada", UsernameFromContext(ctx))

	LoggerFrom(ctx, base).Info("holiday.added")
	assert.Contains(t, buf.String(), "req_id=r-1")
	assert.Contains(t, buf.String(), "username=ada")

	buf.Reset()
	LoggerFrom(context.Background(), base).Info("plain")
	assert.NotContains(t, buf.String(), "req_id")
	assert.NotContains(t, buf.String(), "username")
}
