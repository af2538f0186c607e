// Package logging builds the process logger and adapts it to types.Logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"wxrmessenger/internal/types"
)

// New returns a JSON logger writing to stdout, tagged with the service name.
func New(level, service string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, service)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: false,
	})
	logger := slog.New(handler)
	if service != "" {
		logger = logger.With("service", service)
	}
	return logger
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
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

// Adapter wraps *slog.Logger to implement types.Logger. slog.Logger.With
// returns *slog.Logger rather than types.Logger, so it cannot satisfy the
// interface directly.
type Adapter struct {
	logger *slog.Logger
}

// NewAdapter wraps logger. A nil logger uses slog.Default().
func NewAdapter(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{logger: logger}
}

func (a *Adapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *Adapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *Adapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *Adapter) With(args ...any) types.Logger {
	return &Adapter{logger: a.logger.With(args...)}
}

// Slog returns the wrapped logger.
func (a *Adapter) Slog() *slog.Logger { return a.logger }

var _ types.Logger = (*Adapter)(nil)
