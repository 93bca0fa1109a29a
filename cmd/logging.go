package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	envLogLevel = "XCATALOGER_LOG_LEVEL"
	envFont     = "XCATALOGER_FONT"
)

func parseLevel(level string) (slog.Level, error) {
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}

func setupLogging(w io.Writer, level, format string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
