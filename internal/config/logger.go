// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// SetupLogger installs the default slog logger described by cfg. An empty
// file or "-" logs to w.
func SetupLogger(cfg LogConfig, w io.Writer) {
	slog.SetDefault(slog.New(NewLogHandler(cfg, w)))
}

// NewLogHandler returns a text handler at the configured level.
func NewLogHandler(cfg LogConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(w, "Failed to open log file, falling back: %v\n", err)
		} else {
			w = f
		}
	}
	return slog.NewTextHandler(w, opts)
}
