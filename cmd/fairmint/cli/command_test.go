// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToNestedSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "fairmint",
		Subcommands: []*Command{
			{Name: "status", Run: func(context.Context, []string, *slog.Logger) error {
				called = "status"
				return nil
			}},
			{Name: "allowlist", Subcommands: []*Command{
				{Name: "proof", Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "allowlist proof"
					receivedArgs = args
					return nil
				}},
			}},
		},
	}

	if err := root.Execute(context.Background(), []string{"allowlist", "proof", "0xa11ce"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "allowlist proof" {
		t.Errorf("dispatched to %q, want allowlist proof", called)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "0xa11ce" {
		t.Errorf("args = %v, want [0xa11ce]", receivedArgs)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var socketPath string
	var amount uint64
	command := &Command{
		Name: "claim",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("claim", pflag.ContinueOnError)
			flagSet.StringVar(&socketPath, "socket", "/run/fairmint.sock", "service socket")
			flagSet.Uint64Var(&amount, "amount", 0, "units to claim")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 0 {
				t.Errorf("unexpected positional args %v", args)
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--socket", "/tmp/x.sock", "--amount=3"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if socketPath != "/tmp/x.sock" || amount != 3 {
		t.Errorf("socket = %q, amount = %d", socketPath, amount)
	}
}

func TestExecuteSuggestions(t *testing.T) {
	root := &Command{
		Name: "fairmint",
		Subcommands: []*Command{
			{Name: "status", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
			{
				Name: "locator",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("locator", pflag.ContinueOnError)
					flagSet.String("socket", "", "service socket")
					return flagSet
				},
				Run: func(context.Context, []string, *slog.Logger) error { return nil },
			},
		},
		HelpOutput: &bytes.Buffer{},
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"command typo", []string{"stauts"}, `did you mean "status"?`},
		{"no close command", []string{"xyzzyplugh"}, `unknown command "xyzzyplugh"`},
		{"flag typo", []string{"locator", "--sockt", "x"}, "did you mean --socket?"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := root.Execute(context.Background(), test.args)
			if err == nil {
				t.Fatal("Execute succeeded")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestExecuteRequiresSubcommand(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "fairmint",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "admin", Summary: "Administer the collection", Subcommands: []*Command{
				{Name: "reveal", Summary: "Reveal the collection"},
			}},
		},
	}

	if err := root.Execute(context.Background(), nil); err == nil {
		t.Error("Execute with no args succeeded")
	}
	if !strings.Contains(help.String(), "admin") || !strings.Contains(help.String(), "Administer the collection") {
		t.Errorf("help output missing subcommand listing:\n%s", help.String())
	}

	help.Reset()
	if err := root.Execute(context.Background(), []string{"admin", "--help"}); err != nil {
		t.Fatalf("admin --help: %v", err)
	}
	if !strings.Contains(help.String(), "Run 'fairmint admin <command> --help'") {
		t.Errorf("help output for nested command:\n%s", help.String())
	}
}

func TestPrintHelpIncludesFlagsAndExamples(t *testing.T) {
	command := &Command{
		Name:        "token",
		Description: "Mint an admin token.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
			flagSet.Duration("ttl", 0, "token lifetime")
			return flagSet
		},
		Examples: []Example{{Description: "One hour token", Command: "fairmint admin token --ttl 1h"}},
	}

	var help bytes.Buffer
	command.PrintHelp(&help)
	for _, want := range []string{"Mint an admin token.", "--ttl", "# One hour token", "fairmint admin token --ttl 1h"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help missing %q:\n%s", want, help.String())
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"reveal", "reveal", 0},
		{"reveal", "revael", 2},
		{"status", "stats", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestEmitJSON(t *testing.T) {
	var output JSONOutput
	var buffer bytes.Buffer

	if done, err := output.EmitJSON(&buffer, map[string]int{"supply": 3}); done || err != nil {
		t.Fatalf("EmitJSON without --json = %v, %v", done, err)
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	output.AddFlag(flagSet)
	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var proofs []string
	if done, err := output.EmitJSON(&buffer, proofs); !done || err != nil {
		t.Fatalf("EmitJSON with --json = %v, %v", done, err)
	}
	if got := strings.TrimSpace(buffer.String()); got != "[]" {
		t.Errorf("nil slice encoded as %q, want []", got)
	}
}

func TestNewLoggerFormatAndLevel(t *testing.T) {
	var buffer bytes.Buffer
	newLogger(&buffer, false, "warn").Info("hidden")
	if buffer.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buffer.String())
	}
	newLogger(&buffer, false, "warn").Warn("shown")
	if !strings.HasPrefix(buffer.String(), "{") {
		t.Errorf("piped output is not JSON: %q", buffer.String())
	}

	buffer.Reset()
	newLogger(&buffer, true, "bogus").Info("shown", "k", "v")
	if got := buffer.String(); !strings.Contains(got, "msg=shown") || !strings.Contains(got, "k=v") {
		t.Errorf("terminal output = %q", got)
	}
}
