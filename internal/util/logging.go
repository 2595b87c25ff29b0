package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevelEnv overrides the configured log level when set.
const LogLevelEnv = "DICTATE_LOG"

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// LogOptions describes the rotating application log.
type LogOptions struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// resolveLevel picks the level from LogLevelEnv, then configured, then info.
// Names that do not parse are skipped and reported in warnings.
func resolveLevel(configured string) (level slog.Level, warnings []error) {
	level, err := ParseLevel(configured)
	if err != nil {
		warnings = append(warnings, err)
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		envLevel, err := ParseLevel(env)
		if err != nil {
			return level, append(warnings, fmt.Errorf("%s: %w", LogLevelEnv, err))
		}
		level = envLevel
	}
	return level, warnings
}

// ConfigureLogger points the default slog logger at a rotating file, since
// the terminal belongs to the recording screen. The returned closer flushes
// and closes the file.
func ConfigureLogger(opts LogOptions) (io.Closer, error) {
	level, warnings := resolveLevel(opts.Level)

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, WrapError("create log directory", err)
	}

	out := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	for _, w := range warnings {
		slog.Warn("ignoring log level", "using", level.String(), "error", w)
	}
	return out, nil
}
