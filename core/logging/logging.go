// Package logging renders the bridge's diagnostic channel: human-readable
// lines prefixed [INFO], [DEBUG], [ERROR] or [FATAL], written to a stream
// separate from the protocol output. It plugs into log/slog so the rest of
// the codebase logs through the standard structured API.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LevelFatal marks unrecoverable process-level errors.
const LevelFatal = slog.Level(12)

// osExit is swapped out in tests.
var osExit = os.Exit

// Handler formats records as "[LEVEL] message key=value ...".
type Handler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

// NewHandler returns a Handler writing to w at the given minimum level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(prefix(r.Level))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&sb, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is accepted but not rendered; the diagnostic format is flat.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func writeAttr(sb *strings.Builder, a slog.Attr) {
	if a.Key == "" {
		return
	}
	fmt.Fprintf(sb, " %s=%v", a.Key, a.Value.Resolve().Any())
}

func prefix(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "[FATAL]"
	case level >= slog.LevelError:
		return "[ERROR]"
	case level >= slog.LevelWarn:
		return "[WARN]"
	case level >= slog.LevelInfo:
		return "[INFO]"
	default:
		return "[DEBUG]"
	}
}

// ParseLevel maps a configured verbosity string to a slog level. Unknown
// values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the diagnostic handler as the default slog logger.
// Development mode forces debug-level tracing regardless of the configured
// level.
func Setup(w io.Writer, level string, devMode bool) {
	l := ParseLevel(level)
	if devMode {
		l = slog.LevelDebug
	}
	slog.SetDefault(slog.New(NewHandler(w, l)))
}

// Fatal logs an unrecoverable error and exits with a failure status.
func Fatal(msg string, args ...any) {
	slog.Default().Log(context.Background(), LevelFatal, msg, args...)
	osExit(1)
}
