package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"pihole-button/internal/infra/config"
)

// New creates the daemon logger. Output is "stdout", "stderr" or a file
// path (the target of the --logfile flag). The returned closer must be
// deferred so file outputs are flushed on exit.
func New(cfg config.LoggerConfig) (*slog.Logger, func() error, error) {
	writer, closer, err := logWriter(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(writer, opts)), closer, nil
	}
	return slog.New(slog.NewTextHandler(writer, opts)), closer, nil
}

// parseLevel maps a config level string to slog.Level. Unknown levels fall
// back to info rather than erroring, so a typo never silences the daemon.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// logWriter resolves the output target. Anything that is not a standard
// stream is treated as a log file and opened append-only.
func logWriter(output string) (io.Writer, func() error, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nopClose, nil
	case "stderr", "":
		return os.Stderr, nopClose, nil
	default:
		return openLogFile(output)
	}
}

// openLogFile backs the --logfile flag and the logger.output config key.
func openLogFile(path string) (io.Writer, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func nopClose() error { return nil }
