package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is replaced by Init; the default lets packages log before Init runs (tests, tools).
var Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(Logger)
}

// With returns a child logger carrying the given attributes, e.g. the run id.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
