package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestBackends_JSONFieldsAndLevel(t *testing.T) {
	for _, backend := range []string{"slog", "zap"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: LevelInfo, Format: "json", Backend: backend, Output: &buf})

			l.Debug("hidden")
			l.With(String("component", "insights")).Warn("narrative failed",
				String("insight_type", "prediction"),
				Int("attempt", 2),
				Err(errors.New("timeout")),
			)

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			entry := lines[0]
			assert.Equal(t, "narrative failed", entry["msg"])
			assert.Equal(t, "insights", entry["component"])
			assert.Equal(t, "prediction", entry["insight_type"])
			assert.EqualValues(t, 2, entry["attempt"])
			assert.Equal(t, "timeout", entry["error"])
		})
	}
}

func TestCtx_AddsRequestAndUserID(t *testing.T) {
	for _, backend := range []string{"slog", "zap"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: LevelDebug, Backend: backend, Output: &buf})

			ctx := WithLogger(context.Background(), l)
			ctx = WithRequestID(ctx, "req-1")
			ctx = WithUserID(ctx, "user-1")

			Ctx(ctx).Info("generated")

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, "req-1", lines[0]["request_id"])
			assert.Equal(t, "user-1", lines[0]["user_id"])
		})
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.NotEmpty(t, RequestIDFromContext(ctx))
}

func TestWithFields_DoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Backend: "slog", Output: &buf})

	parent := WithUserID(WithLogger(context.Background(), l), "user-1")
	child := WithFields(parent, String("habit_id", "h-1"))

	Ctx(child).Info("streak recomputed")
	Ctx(parent).Info("request completed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "h-1", lines[0]["habit_id"])
	assert.Equal(t, "user-1", lines[0]["user_id"])
	assert.NotContains(t, lines[1], "habit_id")
	assert.Equal(t, "user-1", lines[1]["user_id"])
}
