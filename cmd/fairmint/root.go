// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/fairmint/cmd/fairmint/cli"
	"github.com/bureau-foundation/fairmint/lib/version"
)

// Root builds the fairmint command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "fairmint",
		Description: `fairmint: fair-launch issuance with allowlist commitments.

Build allowlist Merkle commitments, claim units against them, and
administer a collection's delayed metadata reveal.`,
		Subcommands: []*cli.Command{
			allowlistCommand(),
			claimCommand(),
			statusCommand(),
			locatorCommand(),
			ownerOfCommand(),
			balanceCommand(),
			claimedCommand(),
			adminCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(context.Context, []string, *slog.Logger) error {
					fmt.Fprintf(stdout, "fairmint %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
