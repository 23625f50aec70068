// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/fairmint/lib/config"
	"github.com/bureau-foundation/fairmint/lib/service"
)

// connectionFlags locate the service socket: --socket directly, or
// paths.socket from --config (or $FAIRMINT_CONFIG).
type connectionFlags struct {
	socket     string
	configPath string
}

func (f *connectionFlags) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.socket, "socket", "", "service socket path (default: paths.socket from the config)")
	flagSet.StringVar(&f.configPath, "config", "", "path to fairmint.yaml (default: $"+config.EnvironmentVariable+")")
}

func (f *connectionFlags) socketPath() (string, error) {
	if f.socket != "" {
		return f.socket, nil
	}
	var (
		cfg *config.Config
		err error
	)
	switch {
	case f.configPath != "":
		cfg, err = config.LoadFile(f.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		return "", fmt.Errorf("no service socket: pass --socket or --config, or set %s", config.EnvironmentVariable)
	}
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	return cfg.Paths.Socket, nil
}

// client returns an unauthenticated client.
func (f *connectionFlags) client() (*service.ServiceClient, error) {
	socketPath, err := f.socketPath()
	if err != nil {
		return nil, err
	}
	return service.NewServiceClientFromToken(socketPath, nil), nil
}

// adminClient returns a client that sends the token at tokenPath.
func (f *connectionFlags) adminClient(tokenPath string) (*service.ServiceClient, error) {
	if tokenPath == "" {
		return nil, fmt.Errorf("--token is required")
	}
	socketPath, err := f.socketPath()
	if err != nil {
		return nil, err
	}
	return service.NewServiceClient(socketPath, tokenPath)
}
