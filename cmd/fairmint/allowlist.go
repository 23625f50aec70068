// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/fairmint/cmd/fairmint/cli"
	"github.com/bureau-foundation/fairmint/lib/allowlist"
	"github.com/bureau-foundation/fairmint/lib/commitment"
)

// allowlistFlags are shared by every allowlist subcommand.
type allowlistFlags struct {
	file string
	hash string
	cli.JSONOutput
}

func (f *allowlistFlags) flagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVar(&f.file, "file", "", "allowlist JSONC file (required)")
	flagSet.StringVar(&f.hash, "hash", "keccak256", "commitment hash: keccak256 or blake3")
	f.AddFlag(flagSet)
	return flagSet
}

// load reads and builds the allowlist.
func (f *allowlistFlags) load() (*allowlist.List, error) {
	if f.file == "" {
		return nil, errors.New("--file is required")
	}
	hasher, err := commitment.ParseHasher(f.hash)
	if err != nil {
		return nil, err
	}
	entries, err := allowlist.LoadFile(f.file)
	if err != nil {
		return nil, err
	}
	return allowlist.Build(hasher, entries)
}

func allowlistCommand() *cli.Command {
	return &cli.Command{
		Name:    "allowlist",
		Summary: "Build allowlist commitments and proofs",
		Description: `Build the Merkle commitment for an allowlist.

The allowlist is a JSONC array of {"address": "0x...", "entitlement": N}
entries. Comments and trailing commas are allowed. Every address may
appear once and every entitlement must be positive.`,
		Subcommands: []*cli.Command{
			allowlistRootCommand(),
			allowlistProofCommand(),
			allowlistExportCommand(),
		},
	}
}

type rootSummary struct {
	Root    common.Hash `json:"root"`
	Hash    string      `json:"hash"`
	Entries int         `json:"entries"`
	Total   uint64      `json:"total"`
}

func allowlistRootCommand() *cli.Command {
	var flags allowlistFlags
	return &cli.Command{
		Name:    "root",
		Summary: "Print the commitment root",
		Flags:   func() *pflag.FlagSet { return flags.flagSet("root") },
		Examples: []cli.Example{{
			Description: "Root to put in collection.commitment_root",
			Command:     "fairmint allowlist root --file allowlist.jsonc",
		}},
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			list, err := flags.load()
			if err != nil {
				return err
			}
			summary := rootSummary{
				Root:    list.Root(),
				Hash:    flags.hash,
				Entries: list.Len(),
				Total:   list.Total(),
			}
			if done, err := flags.EmitJSON(stdout, summary); done {
				return err
			}
			fmt.Fprintln(stdout, summary.Root.Hex())
			logger.Info("allowlist committed", "entries", summary.Entries, "total", summary.Total, "hash", summary.Hash)
			return nil
		},
	}
}

func allowlistProofCommand() *cli.Command {
	var flags allowlistFlags
	return &cli.Command{
		Name:    "proof",
		Summary: "Print the proof for one address",
		Usage:   "fairmint allowlist proof --file <allowlist> <address>",
		Flags:   func() *pflag.FlagSet { return flags.flagSet("proof") },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one address argument, got %d", len(args))
			}
			address, err := parseAddress("address", args[0])
			if err != nil {
				return err
			}
			list, err := flags.load()
			if err != nil {
				return err
			}
			proof, err := list.Proof(address)
			if errors.Is(err, allowlist.ErrNotListed) {
				fmt.Fprintf(stdout, "%s is not on the allowlist\n", address.Hex())
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}
			if done, err := flags.EmitJSON(stdout, proof); done {
				return err
			}
			fmt.Fprintf(stdout, "address:     %s\n", proof.Address.Hex())
			fmt.Fprintf(stdout, "entitlement: %d\n", proof.Entitlement)
			fmt.Fprintf(stdout, "leaf:        %s\n", proof.Leaf.Hex())
			for i, node := range proof.Proof {
				fmt.Fprintf(stdout, "proof[%d]:    %s\n", i, node)
			}
			return nil
		},
	}
}

func allowlistExportCommand() *cli.Command {
	var flags allowlistFlags
	return &cli.Command{
		Name:    "export",
		Summary: "Print the root and every proof as JSON",
		Flags:   func() *pflag.FlagSet { return flags.flagSet("export") },
		Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
			list, err := flags.load()
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, list.Export())
		},
	}
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s %q is not a hex address", name, value)
	}
	return common.HexToAddress(value), nil
}
