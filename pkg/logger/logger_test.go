package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Options{Env: "development"}.level())
	assert.Equal(t, slog.LevelInfo, Options{Env: "production"}.level())
	assert.Equal(t, slog.LevelWarn, Options{Level: " WARNING ", Env: "production"}.level())
	assert.Equal(t, LevelCritical, Options{Level: "fatal"}.level())
	assert.Equal(t, slog.LevelInfo, Options{Level: "verbose", Env: "staging"}.level())
	assert.Equal(t, slog.LevelInfo, Options{Level: "info", Env: "development"}.level())
}

func TestOptionsFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Output: &buf, Format: "TEXT"}).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	New(Options{Output: &buf, Format: "xml"}).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: "error", Format: "text"})
	l.Warn("quiet")
	assert.Empty(t, buf.String())
	l.Error("loud")
	assert.Contains(t, buf.String(), "msg=loud")
}

func TestBusinessErrorIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: "debug", Format: "text"})

	l.BusinessError("rejected", nil)
	assert.Empty(t, buf.String())

	l.BusinessError("rejected", errors.New("bad input"), "username", "john.doe")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "err=\"bad input\"")
	assert.Contains(t, buf.String(), "username=john.doe")
}

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Output: &buf, Level: "debug"}).Critical("boom")
	assert.Contains(t, buf.String(), `"level":"CRITICAL"`)
}

func TestCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf, Level: "debug", Format: "text"})

	ctx := WithCorrelationID(context.Background(), "req-1")
	assert.Equal(t, "req-1", CorrelationID(ctx))

	FromContext(ctx, base).Info("hello")
	assert.Contains(t, buf.String(), "correlation_id=req-1")

	buf.Reset()
	ctx = WithCorrelationID(WithContext(context.Background(), base), "req-2")
	FromContext(ctx, Discard()).Info("hello")
	assert.Contains(t, buf.String(), "correlation_id=req-2")

	assert.Equal(t, context.Background(), WithCorrelationID(context.Background(), ""))
}
