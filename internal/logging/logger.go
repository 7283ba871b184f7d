package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
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

// NewLogger builds a text or JSON logger writing to w.
// format: "json" or "text" (defaults to "text")
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// InitLogger initializes the global logger with the specified level and format. Logs go to
// w, or stderr when w is nil, so that reports written to stdout stay clean.
func InitLogger(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	Logger = NewLogger(w, level, format)
	slog.SetDefault(Logger)
	return Logger
}

// SlogAdapter lets the calculation engine log through slog
type SlogAdapter struct {
	L *slog.Logger
}

// NewSlogAdapter wraps l, falling back to the default logger when l is nil
func NewSlogAdapter(l *slog.Logger) SlogAdapter {
	if l == nil {
		l = slog.Default()
	}
	return SlogAdapter{L: l.With("component", "engine")}
}

func (a SlogAdapter) Debugf(format string, args ...any) { a.L.Debug(fmt.Sprintf(format, args...)) }
func (a SlogAdapter) Infof(format string, args ...any)  { a.L.Info(fmt.Sprintf(format, args...)) }
func (a SlogAdapter) Warnf(format string, args ...any)  { a.L.Warn(fmt.Sprintf(format, args...)) }
func (a SlogAdapter) Errorf(format string, args ...any) { a.L.Error(fmt.Sprintf(format, args...)) }
