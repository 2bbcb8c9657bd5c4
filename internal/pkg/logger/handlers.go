// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// ContextHandler adds request scoped values from the context to each record
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler wraps handler
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

const redacted = "***REDACTED***"

var (
	sensitiveKeys = []string{
		"password", "secret", "token", "access_key", "api_key", "authorization",
	}
	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(password|secret|token|api[-_]?key)\s*[:=]\s*["']?([^"'\s]+)`),
		regexp.MustCompile(`(?i)redis://[^:@/\s]*:([^@\s]+)@`),
	}
)

// RedactingHandler masks credentials in attribute values and messages
type RedactingHandler struct {
	handler slog.Handler
}

// NewRedactingHandler wraps handler
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	return &RedactingHandler{handler: handler}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, redactString(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = redactAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(cleaned)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	lower := strings.ToLower(a.Key)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			return slog.String(a.Key, redacted)
		}
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, redactString(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		cleaned := make([]any, len(group))
		for i, ga := range group {
			cleaned[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, cleaned...)
	}
	return a
}

func redactString(s string) string {
	s = sensitivePatterns[0].ReplaceAllString(s, "$1="+redacted)
	return sensitivePatterns[1].ReplaceAllString(s, "redis://"+redacted+"@")
}

// ConsoleHandler writes colored single-line records for local development
type ConsoleHandler struct {
	*slog.TextHandler
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
}

// NewConsoleHandler creates a console handler
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	return &ConsoleHandler{
		TextHandler: slog.NewTextHandler(w, opts),
		mu:          &sync.Mutex{},
		w:           w,
	}
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	const reset = "\033[0m"
	level := r.Level.String()

	fmt.Fprintf(h.w, "%s%s %-5s%s %s",
		levelColor(r.Level),
		r.Time.Format("2006-01-02 15:04:05.000"),
		level,
		reset,
		r.Message,
	)

	for _, a := range h.attrs {
		fmt.Fprintf(h.w, " \033[36m%s=%v%s", a.Key, a.Value, reset)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " \033[36m%s=%v%s", a.Key, a.Value, reset)
		return true
	})

	_, err := fmt.Fprintln(h.w)
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConsoleHandler{
		TextHandler: h.TextHandler.WithAttrs(attrs).(*slog.TextHandler),
		mu:          h.mu,
		w:           h.w,
		attrs:       append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\033[31m"
	case level >= slog.LevelWarn:
		return "\033[33m"
	case level >= slog.LevelInfo:
		return "\033[34m"
	default:
		return "\033[37m"
	}
}
