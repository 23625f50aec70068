// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the fairmint CLI.
//
// The central type is [Command]: a named command with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// The tree is assembled in cmd/fairmint and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing,
// and help output with examples.
//
// An unknown subcommand or flag gets a suggestion when a known name is
// within Levenshtein distance 3 (suggest.go).
//
// [NewCommandLogger] picks a text or JSON handler depending on whether
// stderr is a terminal. [JSONOutput] adds a --json flag to commands
// that print results.
package cli
