package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

func TestPostJSON(t *testing.T) {
	var seenID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		seenID = r.Header.Get("X-Request-ID")
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["fail"] == true {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"quota"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	headers := http.Header{}
	headers.Set("x-api-key", "secret")
	ctx := common.WithRequestID(context.Background(), "req-42")

	reply, err := PostJSON(ctx, srv.Client(), srv.URL, map[string]any{"fail": false}, headers, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(reply))
	assert.Equal(t, "req-42", seenID)

	reply, err = PostJSON(context.Background(), srv.Client(), srv.URL, map[string]any{"fail": true}, headers, nil)
	require.Error(t, err)
	assert.Contains(t, string(reply), "quota")
	assert.NotEmpty(t, seenID)
	assert.NotEqual(t, "req-42", seenID)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.True(t, se.Retryable())
}

func TestStatusErrorPreview(t *testing.T) {
	se := &StatusError{Status: http.StatusBadRequest, Body: preview([]byte(strings.Repeat("x", 300)), 200)}
	assert.False(t, se.Retryable())
	assert.True(t, strings.HasSuffix(se.Body, "..."))
	assert.Len(t, se.Body, 203)
}
