// Package logr builds the application logger: a go-logr front end over a
// log/slog handler.
package logr

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
)

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

type (
	// Logger wraps the upstream logr logger.
	Logger struct {
		logr.Logger

		Format Format
	}

	Config struct {
		Verbosity int
		Format    string
	}

	Format string
)

// New constructs a logger writing to w in the configured format.
func New(w io.Writer, cfg Config) (Logger, error) {
	var h slog.Handler
	opts := &slog.HandlerOptions{Level: toSlogLevel(cfg.Verbosity)}

	switch Format(cfg.Format) {
	case TextFormat, "":
		h = slog.NewTextHandler(w, opts)
	case JSONFormat:
		h = slog.NewJSONHandler(w, opts)
	default:
		return Logger{}, fmt.Errorf("unrecognised logging format: %s", cfg.Format)
	}
	return Logger{
		Logger: logr.FromSlogHandler(h),
		Format: Format(cfg.Format),
	}, nil
}

// NewFile constructs a logger appending to the file at path, creating parent
// directories as needed. The returned closer closes the file.
func NewFile(path string, cfg Config) (Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Logger{}, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Logger{}, nil, fmt.Errorf("opening log file: %w", err)
	}
	l, err := New(f, cfg)
	if err != nil {
		f.Close()
		return Logger{}, nil, err
	}
	return l, f, nil
}

func Discard() Logger { return Logger{Logger: logr.Discard()} }

// WithValues returns a new Logger instance with additional key/value pairs.
func (l Logger) WithValues(keysAndValues ...any) Logger {
	return Logger{
		Logger: l.Logger.WithValues(keysAndValues...),
		Format: l.Format,
	}
}

// WithName returns a new Logger with name appended to the logger name.
func (l Logger) WithName(name string) Logger {
	return Logger{
		Logger: l.Logger.WithName(name),
		Format: l.Format,
	}
}

func (l Logger) V(level int) Logger {
	return Logger{Logger: l.Logger.V(level), Format: l.Format}
}

// toSlogLevel converts a logr v-level to a slog level.
func toSlogLevel(verbosity int) slog.Level {
	if verbosity <= 0 {
		return slog.LevelInfo
	}
	return slog.Level(-4 - (verbosity - 1))
}
