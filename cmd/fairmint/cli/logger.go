// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogLevelVariable overrides the CLI log level (debug, info, warn,
// error). Unparseable values are ignored.
const LogLevelVariable = "FAIRMINT_LOG_LEVEL"

// NewCommandLogger returns the logger handed to Run: text on a
// terminal, JSON lines when stderr is piped.
func NewCommandLogger() *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), os.Getenv(LogLevelVariable))
}

func newLogger(w io.Writer, terminal bool, levelName string) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	var level slog.Level
	if levelName != "" && level.UnmarshalText([]byte(levelName)) == nil {
		options.Level = level
	}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}
