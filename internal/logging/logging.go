// Package logging owns the process-wide slog root. Loggers obtained with L
// before Init (package-level vars) follow whatever handler Init installs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeyError     = "error"
	KeyHResult   = "hresult"
	KeyWidth     = "width"
	KeyHeight    = "height"
	KeyRunID     = "runId"
	KeyOutput    = "output"
	KeyPath      = "path"
)

type contextKey struct{}

// rootHandler forwards to the handler installed by Init. Attrs and groups
// collected through With are replayed on the current target at each call.
type rootHandler struct {
	target *atomic.Pointer[slog.Handler]
	attrs  []slog.Attr
	groups []string
}

func newRootHandler(h slog.Handler) *rootHandler {
	target := new(atomic.Pointer[slog.Handler])
	target.Store(&h)
	return &rootHandler{target: target}
}

func (h *rootHandler) swap(next slog.Handler) { h.target.Store(&next) }

func (h *rootHandler) resolve() slog.Handler {
	handler := *h.target.Load()
	for _, g := range h.groups {
		handler = handler.WithGroup(g)
	}
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	return handler
}

func (h *rootHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*h.target.Load()).Enabled(ctx, level)
}

func (h *rootHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &rootHandler{target: h.target, groups: h.groups[:len(h.groups):len(h.groups)]}
	next.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), attrs...)
	return next
}

func (h *rootHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := &rootHandler{target: h.target, attrs: h.attrs[:len(h.attrs):len(h.attrs)]}
	next.groups = append(append(make([]string, 0, len(h.groups)+1), h.groups...), name)
	return next
}

var (
	level         = new(slog.LevelVar)
	root          = newRootHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	defaultLogger = slog.New(root)
)

func init() {
	slog.SetDefault(defaultLogger)
}

// Init installs the process handler. Call once after config is loaded.
// format: "json" or "text" (default "text")
// lvl: "debug", "info", "warn", "error" (default "info")
// output: nil means os.Stderr
func Init(format, lvl string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	level.Set(parseLevel(lvl))

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	root.swap(handler)
	slog.SetDefault(defaultLogger)
}

// SetLevel changes the minimum level without reinstalling the handler.
func SetLevel(lvl string) { level.Set(parseLevel(lvl)) }

// L returns a logger tagged with the given component name.
func L(component string) *slog.Logger {
	return defaultLogger.With(slog.String(KeyComponent, component))
}

// WithRun returns a child logger carrying the run identifier.
func WithRun(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String(KeyRunID, runID))
}

// HResult formats a raw HRESULT as the hex form Windows documentation uses.
func HResult(code uint32) slog.Attr {
	return slog.String(KeyHResult, fmt.Sprintf("0x%08X", code))
}

// Size is the width/height pair logged for every surface (re)creation.
func Size(w, h int) []any {
	return []any{KeyWidth, w, KeyHeight, h}
}

// NewContext returns a new context carrying the given logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from context, falling back to the default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
