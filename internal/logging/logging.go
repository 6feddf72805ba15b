/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package logging builds the zerolog loggers used by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to w at level. An unknown level
// falls back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Console logs human-readable lines to stderr, for the daemon and CLI tools.
func Console(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, level)
}

// File appends JSON lines to path. The TUI owns the terminal, so it logs here
// instead of to stderr.
func File(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log: %w", err)
	}
	return New(f, level), f, nil
}
