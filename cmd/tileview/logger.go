package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/retroblast-engine/tilemap"
)

// multiHandler dispatches log records to multiple handlers based on level.
type multiHandler struct {
	console slog.Handler // Warn level and above
	file    slog.Handler // Debug level and above
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	if h.console.Enabled(ctx, r.Level) {
		if err := h.console.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiHandler{
		console: h.console.WithAttrs(attrs),
		file:    h.file.WithAttrs(attrs),
	}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	return &multiHandler{
		console: h.console.WithGroup(name),
		file:    h.file.WithGroup(name),
	}
}

// initLogger sends warnings to stderr as text and everything to a rotated
// JSON file in dir, for the viewer and for the engine.
// Returns a cleanup function to close the log file.
func initLogger(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "tileview.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		LocalTime:  true,
	}

	logger := slog.New(&multiHandler{
		console: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
		file:    slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}),
	})
	slog.SetDefault(logger)
	tilemap.SetLogger(logger.With("component", "tilemap"))

	cleanup := func() {
		tilemap.SetLogger(nil)
		if err := lj.Close(); err != nil {
			slog.Error("Failed to close log file", "error", err)
		}
	}
	return cleanup, nil
}
