// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/fairmint/cmd/fairmint/cli"
	"github.com/bureau-foundation/fairmint/lib/mintapi"
)

func claimCommand() *cli.Command {
	var (
		connection  connectionFlags
		output      cli.JSONOutput
		listFile    string
		hash        string
		keyFile     string
		identityHex string
		amount      uint64
		validity    time.Duration
	)
	return &cli.Command{
		Name:    "claim",
		Summary: "Claim units against an allowlist entry",
		Description: `Claim units for the holder of --key against the allowlist entry of
--identity.

The key file holds a hex secp256k1 private key; its address is the
caller and receives the units. The request is signed with the key and
expires after --validity. The identity defaults to the caller. Claiming
for a different identity works when the identity (a cold wallet) has
delegated to the caller in the service's delegation registry.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("claim", pflag.ContinueOnError)
			connection.addFlags(flagSet)
			output.AddFlag(flagSet)
			flagSet.StringVar(&listFile, "allowlist", "", "allowlist JSONC file the proof is built from (required)")
			flagSet.StringVar(&hash, "hash", "keccak256", "commitment hash: keccak256 or blake3")
			flagSet.StringVar(&keyFile, "key", "", "hex secp256k1 private key of the caller (required)")
			flagSet.StringVar(&identityHex, "identity", "", "allowlisted address to claim for (default: the caller)")
			flagSet.Uint64Var(&amount, "amount", 1, "units to claim")
			flagSet.DurationVar(&validity, "validity", 5*time.Minute, "how long the signed request stays valid")
			return flagSet
		},
		Examples: []cli.Example{{
			Description: "Hot wallet claiming a cold wallet's entitlement",
			Command:     "fairmint claim --allowlist allowlist.jsonc --key hot.key --identity 0xC01d... --amount 3",
		}},
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			if keyFile == "" {
				return fmt.Errorf("--key is required")
			}
			if validity <= 0 || validity > mintapi.MaxClaimValidity {
				return fmt.Errorf("--validity must be in (0, %s]", mintapi.MaxClaimValidity)
			}
			key, err := crypto.LoadECDSA(keyFile)
			if err != nil {
				return fmt.Errorf("loading claim key: %w", err)
			}
			identity := crypto.PubkeyToAddress(key.PublicKey)
			if identityHex != "" {
				if identity, err = parseAddress("--identity", identityHex); err != nil {
					return err
				}
			}
			if listFile == "" {
				return fmt.Errorf("--allowlist is required")
			}
			source := allowlistFlags{file: listFile, hash: hash}
			list, err := source.load()
			if err != nil {
				return err
			}
			proof, err := list.Proof(identity)
			if err != nil {
				return err
			}

			client, err := connection.client()
			if err != nil {
				return err
			}
			// The signature binds the collection name, so ask for it.
			var status mintapi.StatusResponse
			if err := client.Call(ctx, mintapi.ActionStatus, nil, &status); err != nil {
				return err
			}
			request := mintapi.ClaimRequest{
				Proof:       proof.Proof,
				Amount:      amount,
				Entitlement: proof.Entitlement,
				Deadline:    time.Now().Add(validity).Unix(),
			}
			if err := request.Sign(status.Collection, key); err != nil {
				return err
			}

			var response mintapi.ClaimResponse
			if err := client.Call(ctx, mintapi.ActionClaim, request.Fields(), &response); err != nil {
				return err
			}
			logger.Info("claimed", "identity", response.Identity.Hex(), "first_id", response.FirstID, "count", response.Count)

			if done, err := output.EmitJSON(stdout, response); done {
				return err
			}
			if response.Count == 0 {
				fmt.Fprintf(stdout, "nothing issued; %s has claimed %d of %d\n",
					response.Identity.Hex(), response.Claimed, proof.Entitlement)
				return nil
			}
			fmt.Fprintf(stdout, "issued ids %d..%d to %s (%s has claimed %d of %d, supply %d)\n",
				response.FirstID, response.FirstID+response.Count-1, response.Owner.Hex(),
				response.Identity.Hex(), response.Claimed, proof.Entitlement, response.Supply)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	var (
		connection connectionFlags
		output     cli.JSONOutput
	)
	return &cli.Command{
		Name:    "status",
		Summary: "Show the collection's supply and reveal state",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			connection.addFlags(flagSet)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, _ []string, _ *slog.Logger) error {
			client, err := connection.client()
			if err != nil {
				return err
			}
			var status mintapi.StatusResponse
			if err := client.Call(ctx, mintapi.ActionStatus, nil, &status); err != nil {
				return err
			}
			if done, err := output.EmitJSON(stdout, status); done {
				return err
			}
			fmt.Fprintf(stdout, "supply:      %d / %d (%d claimants)\n", status.Supply, status.MaxSupply, status.Claimants)
			fmt.Fprintf(stdout, "root:        %s (%s)\n", status.Root.Hex(), status.Hash)
			fmt.Fprintf(stdout, "pass:        %s\n", status.PassAddress.Hex())
			if status.Revealed {
				fmt.Fprintf(stdout, "revealed:    yes, offset %d\n", status.Offset)
			} else {
				fmt.Fprintf(stdout, "revealed:    no\n")
			}
			fmt.Fprintf(stdout, "placeholder: %s\n", status.PlaceholderLocator)
			fmt.Fprintf(stdout, "base:        %s (extension %s)\n", status.BaseLocator, status.Extension)
			return nil
		},
	}
}

// unitCommand builds a query that takes one unit id argument.
func unitCommand(name, summary, action string, response any, format func(any) string) *cli.Command {
	var (
		connection connectionFlags
		output     cli.JSONOutput
	)
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "fairmint " + name + " [flags] <id>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			connection.addFlags(flagSet)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one unit id argument, got %d", len(args))
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("unit id %q: %w", args[0], err)
			}
			client, err := connection.client()
			if err != nil {
				return err
			}
			if err := client.Call(ctx, action, map[string]any{"id": id}, response); err != nil {
				return err
			}
			if done, err := output.EmitJSON(stdout, response); done {
				return err
			}
			fmt.Fprintln(stdout, format(response))
			return nil
		},
	}
}

func locatorCommand() *cli.Command {
	return unitCommand("locator", "Print a unit's metadata locator", mintapi.ActionLocator,
		&mintapi.LocatorResponse{}, func(response any) string {
			return response.(*mintapi.LocatorResponse).Locator
		})
}

func ownerOfCommand() *cli.Command {
	return unitCommand("owner-of", "Print the owner of an issued unit", mintapi.ActionOwnerOf,
		&mintapi.OwnerResponse{}, func(response any) string {
			return response.(*mintapi.OwnerResponse).Owner.Hex()
		})
}

// addressCommand builds a query that takes one address argument.
func addressCommand(name, summary, action string, response any, format func(any) string) *cli.Command {
	var (
		connection connectionFlags
		output     cli.JSONOutput
	)
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "fairmint " + name + " [flags] <address>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			connection.addFlags(flagSet)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one address argument, got %d", len(args))
			}
			address, err := parseAddress("address", args[0])
			if err != nil {
				return err
			}
			client, err := connection.client()
			if err != nil {
				return err
			}
			if err := client.Call(ctx, action, map[string]any{"address": address}, response); err != nil {
				return err
			}
			if done, err := output.EmitJSON(stdout, response); done {
				return err
			}
			fmt.Fprintln(stdout, format(response))
			return nil
		},
	}
}

func balanceCommand() *cli.Command {
	return addressCommand("balance", "Print how many units an address owns", mintapi.ActionBalance,
		&mintapi.BalanceResponse{}, func(response any) string {
			return strconv.FormatUint(response.(*mintapi.BalanceResponse).Balance, 10)
		})
}

func claimedCommand() *cli.Command {
	return addressCommand("claimed", "Print how much of an identity's entitlement is claimed", mintapi.ActionClaimed,
		&mintapi.ClaimedResponse{}, func(response any) string {
			return strconv.FormatUint(response.(*mintapi.ClaimedResponse).Claimed, 10)
		})
}
