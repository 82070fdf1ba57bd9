package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects and configures a Logger backend.
type Options struct {
	Backend string // "slog" or "zerolog"
	Level   string // debug, info, warn, error
	Format  string // json or text
	File    string // rotate into this file instead of stdout when set

	// Output overrides stdout; used by tests.
	Output io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a Logger from opts. The closer releases the log file; it is a
// no-op when the logger writes to Output or stdout.
func New(opts Options) (Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
			LocalTime:  true,
		}
		out, closer = lj, lj
	}

	l, err := newLogger(opts, out)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return l, closer, nil
}

func newLogger(opts Options, out io.Writer) (Logger, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "slog":
		level, err := slogLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		ho := &slog.HandlerOptions{Level: level}
		var h slog.Handler
		if strings.EqualFold(opts.Format, "text") {
			h = slog.NewTextHandler(out, ho)
		} else {
			h = slog.NewJSONHandler(out, ho)
		}
		return NewSlogLogger(slog.New(h)), nil

	case "zerolog":
		level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		if level == zerolog.NoLevel {
			level = zerolog.InfoLevel
		}
		w := out
		if strings.EqualFold(opts.Format, "text") {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: opts.File != ""}
		}
		zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
		return NewZerologLogger(zl), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func slogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}
