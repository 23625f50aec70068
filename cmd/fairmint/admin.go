// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/fairmint/cmd/fairmint/cli"
	"github.com/bureau-foundation/fairmint/lib/admintoken"
	"github.com/bureau-foundation/fairmint/lib/config"
	"github.com/bureau-foundation/fairmint/lib/mintapi"
)

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Summary: "Administer a collection service",
		Description: `Manage admin keys and tokens, and run owner-only actions.

The service verifies admin tokens against the public key configured as
admin.public_key_file. Each token names the owner address it speaks
for; the service refuses admin actions whose subject is not the
collection owner.`,
		Subcommands: []*cli.Command{
			adminKeygenCommand(),
			adminTokenCommand(),
			adminRevealCommand(),
			adminLocatorCommand("set-base-locator", "Set the base locator used after reveal", mintapi.ActionSetBaseLocator),
			adminLocatorCommand("set-placeholder-locator", "Set the locator served before reveal", mintapi.ActionSetPlaceholderLocator),
			adminSetRootCommand(),
			adminSetPassCommand(),
		},
	}
}

func adminKeygenCommand() *cli.Command {
	var out string
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an admin signing keypair",
		Description: `Write a new Ed25519 keypair. The private key goes to --out (mode
0600) and the public key to --out with ".pub" appended. Point the
service's admin.public_key_file at the public key.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVar(&out, "out", "admin.key", "private key path")
			return flagSet
		},
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("%s already exists; refusing to overwrite a key", out)
			}
			public, private, err := admintoken.GenerateKeypair()
			if err != nil {
				return err
			}
			publicPath, err := admintoken.SaveKeypair(out, public, private)
			if err != nil {
				return err
			}
			logger.Info("keypair written", "private", out, "public", publicPath)
			fmt.Fprintln(stdout, publicPath)
			return nil
		},
	}
}

func adminTokenCommand() *cli.Command {
	var (
		keyPath    string
		subjectHex string
		audience   string
		ttl        time.Duration
		out        string
		configPath string
		flagSet    *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "token",
		Summary: "Mint a short-lived admin token",
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("token", pflag.ContinueOnError)
			flagSet.StringVar(&keyPath, "key", "admin.key", "private key written by keygen")
			flagSet.StringVar(&subjectHex, "subject", "", "owner address the token speaks for (required)")
			flagSet.StringVar(&audience, "audience", admintoken.DefaultAudience, "collection the token is scoped to (default: admin.audience)")
			flagSet.DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime (default: admin.token_ttl)")
			flagSet.StringVar(&out, "out", "admin.token", "token output path")
			flagSet.StringVar(&configPath, "config", "", "service config supplying audience and ttl defaults")
			return flagSet
		},
		Examples: []cli.Example{{
			Description: "Token for a one-off reveal",
			Command:     "fairmint admin token --subject 0x0wner... --ttl 5m",
		}},
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			subject, err := parseAddress("--subject", subjectHex)
			if err != nil {
				return err
			}
			if configPath != "" {
				cfg, err := config.LoadFile(configPath)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				if !flagSet.Changed("audience") {
					audience = cfg.Admin.Audience
				}
				if !flagSet.Changed("ttl") {
					ttl = cfg.TokenLifetime()
				}
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", ttl)
			}
			key, err := admintoken.LoadPrivateKey(keyPath)
			if err != nil {
				return err
			}
			defer key.Close()
			token := admintoken.New(subject, audience, time.Now(), ttl)
			tokenBytes, err := admintoken.MintWithKey(key, token)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, tokenBytes, 0o600); err != nil {
				return fmt.Errorf("writing token: %w", err)
			}
			logger.Info("token minted", "id", token.ID, "subject", subject.Hex(),
				"expires", time.Unix(token.ExpiresAt, 0).UTC().Format(time.RFC3339))
			fmt.Fprintln(stdout, token.ID)
			return nil
		},
	}
}

// adminFlags are shared by the subcommands that call the service.
type adminFlags struct {
	connection connectionFlags
	tokenPath  string
	cli.JSONOutput
}

func (f *adminFlags) flagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.connection.addFlags(flagSet)
	flagSet.StringVar(&f.tokenPath, "token", "admin.token", "admin token minted by 'fairmint admin token'")
	f.AddFlag(flagSet)
	return flagSet
}

// call sends an admin action and prints the response as JSON when
// requested, or message otherwise.
func (f *adminFlags) call(ctx context.Context, action string, fields map[string]any, response any, message func() string) error {
	client, err := f.connection.adminClient(f.tokenPath)
	if err != nil {
		return err
	}
	if err := client.Call(ctx, action, fields, response); err != nil {
		return err
	}
	if done, err := f.EmitJSON(stdout, response); done {
		return err
	}
	fmt.Fprintln(stdout, message())
	return nil
}

func adminRevealCommand() *cli.Command {
	var flags adminFlags
	return &cli.Command{
		Name:    "reveal",
		Summary: "Draw the reveal offset (once)",
		Description: `Draw the random offset that maps unit ids to metadata and lock the
base locator. This happens at most once; the offset is permanent.`,
		Flags: func() *pflag.FlagSet { return flags.flagSet("reveal") },
		Run: func(ctx context.Context, _ []string, _ *slog.Logger) error {
			var response mintapi.RevealResponse
			return flags.call(ctx, mintapi.ActionReveal, nil, &response, func() string {
				return fmt.Sprintf("revealed with offset %d", response.Offset)
			})
		},
	}
}

func adminLocatorCommand(name, summary, action string) *cli.Command {
	var flags adminFlags
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "fairmint admin " + name + " [flags] <locator>",
		Flags:   func() *pflag.FlagSet { return flags.flagSet(name) },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one locator argument, got %d", len(args))
			}
			var response mintapi.LocatorUpdate
			return flags.call(ctx, action, map[string]any{"locator": args[0]}, &response, func() string {
				return "locator set to " + response.Locator
			})
		},
	}
}

func adminSetRootCommand() *cli.Command {
	var flags adminFlags
	return &cli.Command{
		Name:    "set-root",
		Summary: "Replace the allowlist commitment root",
		Description: `Replace the commitment root. Proofs built against the previous
allowlist stop verifying; amounts already claimed stay recorded.`,
		Usage: "fairmint admin set-root [flags] <root>",
		Flags: func() *pflag.FlagSet { return flags.flagSet("set-root") },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one root argument, got %d", len(args))
			}
			root, err := parseHash(args[0])
			if err != nil {
				return err
			}
			var response mintapi.RootUpdate
			return flags.call(ctx, mintapi.ActionSetRoot, map[string]any{"root": root}, &response, func() string {
				return "root set to " + response.Root.Hex()
			})
		},
	}
}

func adminSetPassCommand() *cli.Command {
	var flags adminFlags
	return &cli.Command{
		Name:    "set-pass-address",
		Summary: "Set the pass contract consulted on claims",
		Usage:   "fairmint admin set-pass-address [flags] <address>",
		Flags:   func() *pflag.FlagSet { return flags.flagSet("set-pass-address") },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one address argument, got %d", len(args))
			}
			address, err := parseAddress("address", args[0])
			if err != nil {
				return err
			}
			var response mintapi.PassUpdate
			return flags.call(ctx, mintapi.ActionSetPassAddress, map[string]any{"pass_address": address}, &response, func() string {
				return "pass address set to " + response.PassAddress.Hex()
			})
		},
	}
}

var errBadHash = errors.New("not a 32-byte hex hash")

func parseHash(value string) (common.Hash, error) {
	raw := value
	if len(raw) >= 2 && (raw[:2] == "0x" || raw[:2] == "0X") {
		raw = raw[2:]
	}
	if len(raw) != 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("root %q: %w", value, errBadHash)
	}
	var hash common.Hash
	if err := hash.UnmarshalText([]byte("0x" + raw)); err != nil {
		return common.Hash{}, fmt.Errorf("root %q: %w", value, errBadHash)
	}
	return hash, nil
}
