// Package logging wraps log/slog for the whole service: a console text handler and a
// weekly rotating JSON file, reachable through package-level helpers.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Options configures the global logger.
type Options struct {
	// Dir holds the rotating log files; empty logs to the console only.
	Dir            string
	Level          slog.Level
	RetentionWeeks int
	MaxFileSize    int64
}

// Service is the initialized global logger.
type Service struct {
	Logger *slog.Logger
	file   *RotatingFile
}

var defaultService atomic.Pointer[Service]

// Init builds the global logger and makes it the slog default.
// Failing to open the log directory falls back to console logging.
func Init(opts Options) *Service {
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: opts.Level})
	svc := &Service{}

	if opts.Dir == "" {
		svc.Logger = slog.New(console)
	} else {
		file, err := OpenRotatingFile(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
		if err != nil {
			svc.Logger = slog.New(console)
			svc.Logger.Error("Failed to open log directory, logging to console only", "dir", opts.Dir, "error", err)
		} else {
			svc.file = file
			svc.Logger = slog.New(fanout{
				console,
				slog.NewJSONHandler(file, &slog.HandlerOptions{Level: opts.Level}),
			})
		}
	}

	if previous := defaultService.Swap(svc); previous != nil {
		_ = previous.Close()
	}
	slog.SetDefault(svc.Logger)
	return svc
}

// Close releases the log file, if any.
func (s *Service) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Close shuts down the global logger.
func Close() error {
	return defaultService.Load().Close()
}

// ParseLevel maps a LOG_LEVEL value to a slog level; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Logger returns the global logger, or the slog default before Init.
func Logger() *slog.Logger {
	if svc := defaultService.Load(); svc != nil && svc.Logger != nil {
		return svc.Logger
	}
	return slog.Default()
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
