package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/erazemk/playlist/internal/config"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout and
// ERROR+ to stderr.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// setupLogger installs the default logger. When cfg.Path is set, every record
// is also written to a rotating log file. The returned function closes it.
func setupLogger(cfg config.LogConfig) func() {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)
	cleanup := func() {}

	if cfg.Path != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		cleanup = func() { file.Close() }
		stdoutW = io.MultiWriter(os.Stdout, file)
		stderrW = io.MultiWriter(os.Stderr, file)
	}

	newHandler := func(w io.Writer) slog.Handler {
		if strings.ToLower(cfg.Format) == "json" {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(&levelRouter{
		level:  level,
		stdout: newHandler(stdoutW),
		stderr: newHandler(stderrW),
	}))
	return cleanup
}
