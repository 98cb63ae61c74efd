package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPicksHandler(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", slog.LevelInfo).Info("hello", slog.String("k", "v"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	New(&buf, "text", slog.LevelInfo).Info("hello", slog.String("k", "v"))
	assert.Contains(t, buf.String(), "msg=hello k=v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLogOperationSkipsZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)
	LogOperation(logger, "pipeline_completed", slog.Duration("duration", 0), slog.Int("students", 3))
	assert.Contains(t, buf.String(), `"students":3`)
	assert.NotContains(t, buf.String(), "duration")

	buf.Reset()
	LogOperation(logger, "pipeline_completed", slog.Duration("duration", time.Second))
	assert.Contains(t, buf.String(), "duration")

	LogOperation(nil, "ignored")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	LogError(NewStructuredLogger(&buf, slog.LevelInfo), "score failed", errors.New("boom"), slog.String("table", "fees"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"table":"fees"`)
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
	l := Discard()
	assert.Same(t, l, FromContext(WithLogger(context.Background(), l)))
}
