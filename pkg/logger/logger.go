// Package logger provides the structured, leveled logger used across the service.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog.LevelError and is printed as CRITICAL.
const LevelCritical = slog.Level(12)

const correlationKey = "correlation_id"

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	// BusinessError logs a rejected request at warn level. Nil errors are ignored.
	BusinessError(message string, err error, args ...any)
	// InternalError logs an infrastructure failure at error level. Nil errors are ignored.
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

// Options describes where and how a Logger writes. Zero values mean stdout,
// info level (debug in development) and JSON.
type Options struct {
	Output io.Writer
	Env    string
	Level  string // debug, info, warn, error or critical
	Format string // json or text
}

var levels = map[string]slog.Level{
	"debug":    slog.LevelDebug,
	"info":     slog.LevelInfo,
	"warn":     slog.LevelWarn,
	"warning":  slog.LevelWarn,
	"error":    slog.LevelError,
	"critical": LevelCritical,
	"fatal":    LevelCritical,
}

// level falls back to debug in development and info elsewhere when Level is
// empty or unknown.
func (o Options) level() slog.Level {
	if level, ok := levels[normalize(o.Level)]; ok {
		return level
	}
	if normalize(o.Env) == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (o Options) handler() slog.Handler {
	out := o.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOptions := &slog.HandlerOptions{Level: o.level(), ReplaceAttr: labelCritical}
	if normalize(o.Format) == "text" {
		return slog.NewTextHandler(out, handlerOptions)
	}
	return slog.NewJSONHandler(out, handlerOptions)
}

// New returns a Logger configured by opts.
func New(opts Options) Logger {
	return &logger{Logger: slog.New(opts.handler())}
}

// NewFromEnv reads ENV, LOG_LEVEL and LOG_FORMAT. It is meant for failures
// that happen before the configuration is loaded.
func NewFromEnv() Logger {
	return New(Options{
		Env:    os.Getenv("ENV"),
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return &logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelCritical + 1}))}
}

// logger adds the service levels on top of slog.
type logger struct {
	*slog.Logger
}

func (l *logger) Critical(message string, args ...any) {
	l.Log(context.Background(), LevelCritical, message, args...)
}

func (l *logger) BusinessError(message string, err error, args ...any) {
	if err != nil {
		l.Warn(message, append([]any{"err", err}, args...)...)
	}
}

func (l *logger) InternalError(message string, err error, args ...any) {
	if err != nil {
		l.Error(message, append([]any{"err", err}, args...)...)
	}
}

func (l *logger) With(args ...any) Logger {
	return &logger{Logger: l.Logger.With(args...)}
}

func labelCritical(_ []string, attr slog.Attr) slog.Attr {
	if level, ok := attr.Value.Any().(slog.Level); ok && attr.Key == slog.LevelKey && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

type loggerKey struct{}

type correlationIDKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithCorrelationID stores the request correlation id in ctx and tags the
// context logger with it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, correlationIDKey{}, id)
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		ctx = WithContext(ctx, l.With(correlationKey, id))
	}
	return ctx
}

// CorrelationID returns the correlation id stored in ctx, if any.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// FromContext returns the logger stored in ctx, or fallback tagged with the
// context correlation id.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	if id := CorrelationID(ctx); id != "" {
		return fallback.With(correlationKey, id)
	}
	return fallback
}
