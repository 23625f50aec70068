// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/fairmint/lib/admintoken"
	"github.com/bureau-foundation/fairmint/lib/clock"
	"github.com/bureau-foundation/fairmint/lib/commitment"
	"github.com/bureau-foundation/fairmint/lib/config"
	"github.com/bureau-foundation/fairmint/lib/delegation"
	"github.com/bureau-foundation/fairmint/lib/mint"
	"github.com/bureau-foundation/fairmint/lib/mintstore"
	"github.com/bureau-foundation/fairmint/lib/randomness"
	"github.com/bureau-foundation/fairmint/lib/service"
	"github.com/bureau-foundation/fairmint/lib/statefile"
)

// CollectionService is the running service: one engine behind one
// socket.
type CollectionService struct {
	engine     *mint.Engine
	auth       *service.AuthConfig
	collection string
	clock      clock.Clock
	startedAt  time.Time
	logger     *slog.Logger

	// claimMu serializes signed claims so a digest is checked and
	// recorded atomically with the claim it authorizes. accepted
	// holds digests of accepted claims until their deadline.
	claimMu  sync.Mutex
	accepted *service.RevocationList

	// closeStore releases the store's resources. Nil for stores that
	// hold none.
	closeStore func() error
}

// newCollectionService assembles the engine and its collaborators
// from cfg. The caller must call Close.
func newCollectionService(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) (*CollectionService, error) {
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	cs := &CollectionService{
		collection: cfg.Collection.Name,
		clock:      clk,
		startedAt:  clk.Now(),
		logger:     logger,
		accepted:   service.NewRevocationList(),
		closeStore: closeStore,
	}

	engine, err := newEngine(ctx, cfg, store, clk, logger)
	if err != nil {
		cs.Close()
		return nil, err
	}
	cs.engine = engine

	auth, err := newAuthConfig(cfg, clk)
	if err != nil {
		cs.Close()
		return nil, err
	}
	cs.auth = auth
	return cs, nil
}

// Close releases the store.
func (cs *CollectionService) Close() error {
	if cs.closeStore == nil {
		return nil
	}
	return cs.closeStore()
}

// openStore opens the backend named by store.kind.
func openStore(cfg *config.Config, logger *slog.Logger) (mint.Store, func() error, error) {
	switch cfg.Store.Kind {
	case "memory":
		logger.Warn("using the in-memory store; claims will not survive a restart")
		return mint.NewMemoryStore(), nil, nil
	case "sqlite":
		store, err := mintstore.Open(mintstore.Config{
			Path:   cfg.StorePath(),
			Logger: logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store.Close, nil
	case "file":
		compression, err := statefile.ParseCompression(cfg.Store.Compression)
		if err != nil {
			return nil, nil, err
		}
		return statefile.New(cfg.StorePath(), compression, logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func newEngine(ctx context.Context, cfg *config.Config, store mint.Store, clk clock.Clock, logger *slog.Logger) (*mint.Engine, error) {
	hasher, err := commitment.ParseHasher(cfg.Collection.Hash)
	if err != nil {
		return nil, err
	}
	root, err := cfg.CommitmentRoot()
	if err != nil {
		return nil, err
	}

	var registry delegation.Registry
	if cfg.Delegations.File != "" {
		static, err := delegation.LoadFile(cfg.Delegations.File)
		if err != nil {
			return nil, err
		}
		registry = static
	}

	source, err := randomness.Parse(cfg.Randomness.Source, cfg.Randomness.Value)
	if err != nil {
		return nil, err
	}

	engine, err := mint.NewEngine(ctx, mint.Config{
		MaxSupply:          cfg.Collection.MaxSupply,
		Extension:          cfg.Collection.Extension,
		Hasher:             hasher,
		Root:               root,
		PlaceholderLocator: cfg.Collection.PlaceholderLocator,
		BaseLocator:        cfg.Collection.BaseLocator,
		PassAddress:        cfg.PassContract(),
		Resolver:           delegation.NewResolver(registry),
		Randomness:         source,
		Authorizer:         mint.OwnerAuthorizer{Owner: cfg.OwnerAddress()},
		Store:              store,
		Clock:              clk,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("starting engine: %w", err)
	}
	return engine, nil
}

// newAuthConfig loads the admin public key. Without one the service
// runs with admin actions disabled and returns nil.
func newAuthConfig(cfg *config.Config, clk clock.Clock) (*service.AuthConfig, error) {
	if cfg.Admin.PublicKeyFile == "" {
		return nil, nil
	}
	publicKey, err := admintoken.LoadPublicKey(cfg.Admin.PublicKeyFile)
	if err != nil {
		return nil, err
	}
	revocations := service.NewRevocationList()
	for _, id := range cfg.Admin.RevokedTokens {
		revocations.Revoke(id, time.Time{})
	}
	return &service.AuthConfig{
		PublicKey:   publicKey,
		Audience:    cfg.Admin.Audience,
		Revocations: revocations,
		Clock:       clk,
	}, nil
}

// serve runs the service until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	cs, err := newCollectionService(ctx, cfg, clock.Real(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cs.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	server := service.NewSocketServer(cfg.Paths.Socket, logger, cs.auth)
	cs.registerActions(server)

	status := cs.engine.Status()
	logger.Info("fairmint service running",
		"socket", cfg.Paths.Socket,
		"store", cfg.Store.Kind,
		"max_supply", status.MaxSupply,
		"supply", status.Supply,
		"revealed", status.Revealed,
		"admin", cs.auth != nil,
	)

	err = server.Serve(ctx)
	logger.Info("shutting down")
	return err
}
