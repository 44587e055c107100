package config

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// isTerminal is swapped in tests
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetupLogging configures the global slog logger based on args
// Returns the log file handle (caller must close it) or nil if no file
func SetupLogging(args Args) (*os.File, error) {
	var output io.Writer = os.Stderr
	var logFile *os.File
	color := isTerminal(os.Stderr)

	if args.Log != "" {
		f, err := os.OpenFile(args.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		logFile = f
		output = io.MultiWriter(f, os.Stderr)
		color = false
	}

	slog.SetDefault(slog.New(newHandler(output, args, color)))

	return logFile, nil
}

func newHandler(w io.Writer, args Args, color bool) slog.Handler {
	level := parseLogLevel(args.LogLevel)

	if args.Json {
		// JSON mode: machine readable logs on stderr, data on stdout
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: level == slog.LevelDebug,
		})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  level == slog.LevelDebug,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	})
}

// parseLogLevel converts string to slog.Level
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
