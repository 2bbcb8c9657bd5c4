// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey represents keys for context values picked up by the logger
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyJobID     ContextKey = "job_id"
	ContextKeyTaskType  ContextKey = "task_type"
)

var contextKeys = []ContextKey{
	ContextKeyRequestID,
	ContextKeyTraceID,
	ContextKeyClientIP,
	ContextKeyJobID,
	ContextKeyTaskType,
}

// Options configures the root logger
type Options struct {
	Level       string
	Format      string // json or text
	Service     string
	Version     string
	Environment string
	AddSource   bool
}

// SetupLogger builds the root logger, installs it as the slog default and returns it
func SetupLogger(level, format string) *slog.Logger {
	return Setup(os.Stdout, Options{Level: level, Format: format})
}

// Setup builds a logger writing to w. Records are enriched with request
// scoped values from the context and secrets are redacted before output.
func Setup(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		AddSource:   opts.AddSource,
		ReplaceAttr: replaceAttr(opts.Format),
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text", "console":
		handler = NewConsoleHandler(w, handlerOpts)
	default:
		handler = slog.NewJSONHandler(w, handlerOpts)
	}

	handler = NewRedactingHandler(NewContextHandler(handler))

	var attrs []slog.Attr
	if opts.Service != "" {
		attrs = append(attrs, slog.String("service", opts.Service))
	}
	if opts.Version != "" {
		attrs = append(attrs, slog.String("version", opts.Version))
	}
	if opts.Environment != "" {
		attrs = append(attrs, slog.String("env", opts.Environment))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithValue stores a request scoped logging value in ctx
func WithValue(ctx context.Context, key ContextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// RequestID returns the request ID stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

func replaceAttr(format string) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		switch {
		case a.Key == slog.TimeKey:
			if t, ok := a.Value.Any().(time.Time); ok {
				a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
			}
		case a.Key == slog.LevelKey && format == "json":
			a.Key = "severity"
		case strings.HasSuffix(a.Key, "_ms"):
			if d, ok := a.Value.Any().(time.Duration); ok {
				a.Value = slog.Float64Value(float64(d.Milliseconds()))
			}
		}
		return a
	}
}
