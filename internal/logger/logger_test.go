package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithContextAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", "json")

	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), 42)
	WithContext(ctx).Info("booked")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booked", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.EqualValues(t, 42, line["user_id"])
}

func TestNewRequestIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewRequestID(), NewRequestID())
	assert.Len(t, NewRequestID(), 36)
}
