// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bureau-foundation/fairmint/lib/admintoken"
	"github.com/bureau-foundation/fairmint/lib/codec"
	"github.com/bureau-foundation/fairmint/lib/mint"
	"github.com/bureau-foundation/fairmint/lib/mintapi"
	"github.com/bureau-foundation/fairmint/lib/service"
)

// registerActions registers every socket action. Reads need no
// credentials. A claim is authorized by its Merkle proof and by the
// caller's signature over the request. Admin
// mutators need a token and are only registered when the service has
// an admin public key.
func (cs *CollectionService) registerActions(server *service.SocketServer) {
	server.Handle(mintapi.ActionStatus, cs.handleStatus)
	server.Handle(mintapi.ActionClaim, cs.handleClaim)
	server.Handle(mintapi.ActionLocator, cs.handleLocator)
	server.Handle(mintapi.ActionOwnerOf, cs.handleOwnerOf)
	server.Handle(mintapi.ActionBalance, cs.handleBalance)
	server.Handle(mintapi.ActionClaimed, cs.handleClaimed)

	if cs.auth == nil {
		cs.logger.Warn("no admin public key configured; admin actions disabled")
		return
	}
	server.HandleAuth(mintapi.ActionReveal, cs.handleReveal)
	server.HandleAuth(mintapi.ActionSetBaseLocator, cs.handleSetBaseLocator)
	server.HandleAuth(mintapi.ActionSetPlaceholderLocator, cs.handleSetPlaceholderLocator)
	server.HandleAuth(mintapi.ActionSetRoot, cs.handleSetRoot)
	server.HandleAuth(mintapi.ActionSetPassAddress, cs.handleSetPassAddress)
}

// decodeRequest decodes the action-specific fields of raw into T.
func decodeRequest[T any](raw []byte) (T, error) {
	var request T
	if err := codec.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("invalid request: %w", err)
	}
	return request, nil
}

func (cs *CollectionService) handleStatus(ctx context.Context, raw []byte) (any, error) {
	return mintapi.StatusResponse{
		Collection:    cs.collection,
		Status:        cs.engine.Status(),
		UptimeSeconds: cs.clock.Now().Sub(cs.startedAt).Seconds(),
	}, nil
}

func (cs *CollectionService) handleClaim(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.ClaimRequest](raw)
	if err != nil {
		return nil, err
	}
	now := cs.clock.Now()
	if err := request.Verify(cs.collection, now); err != nil {
		return nil, err
	}

	// A signed request authorizes exactly one accepted claim. A
	// rejected claim may be retried with the same signature.
	digest := request.Digest(cs.collection).Hex()
	cs.claimMu.Lock()
	defer cs.claimMu.Unlock()
	if cs.accepted.IsRevoked(digest, now) {
		return nil, mintapi.ErrClaimAlreadyUsed
	}
	receipt, err := cs.engine.Claim(ctx, mint.ClaimRequest{
		Caller:      request.Caller,
		Proof:       request.ProofNodes(),
		Amount:      request.Amount,
		Entitlement: request.Entitlement,
	})
	if err != nil {
		return nil, err
	}
	cs.accepted.Revoke(digest, time.Unix(request.Deadline, 0))
	return mintapi.ClaimResponse{
		Identity: receipt.EffectiveIdentity,
		Owner:    receipt.Owner,
		FirstID:  receipt.FirstID,
		Count:    receipt.Count,
		Claimed:  receipt.Cumulative,
		Supply:   receipt.Supply,
	}, nil
}

func (cs *CollectionService) handleLocator(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.UnitRequest](raw)
	if err != nil {
		return nil, err
	}
	locator, err := cs.engine.Locator(request.ID)
	if err != nil {
		return nil, err
	}
	return mintapi.LocatorResponse{ID: request.ID, Locator: locator}, nil
}

func (cs *CollectionService) handleOwnerOf(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.UnitRequest](raw)
	if err != nil {
		return nil, err
	}
	owner, err := cs.engine.OwnerOf(request.ID)
	if err != nil {
		return nil, err
	}
	return mintapi.OwnerResponse{ID: request.ID, Owner: owner}, nil
}

func (cs *CollectionService) handleBalance(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.AddressRequest](raw)
	if err != nil {
		return nil, err
	}
	return mintapi.BalanceResponse{
		Address: request.Address,
		Balance: cs.engine.BalanceOf(request.Address),
	}, nil
}

func (cs *CollectionService) handleClaimed(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.AddressRequest](raw)
	if err != nil {
		return nil, err
	}
	return mintapi.ClaimedResponse{
		Identity: request.Address,
		Claimed:  cs.engine.Claimed(request.Address),
	}, nil
}

// Admin handlers pass the token's subject to the engine as the
// caller; the engine's authorizer decides whether it is the owner.

func (cs *CollectionService) handleReveal(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
	offset, err := cs.engine.Reveal(ctx, token.Subject)
	if err != nil {
		return nil, err
	}
	return mintapi.RevealResponse{Offset: offset}, nil
}

func (cs *CollectionService) handleSetBaseLocator(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.LocatorUpdate](raw)
	if err != nil {
		return nil, err
	}
	if err := cs.engine.SetBaseLocator(ctx, token.Subject, request.Locator); err != nil {
		return nil, err
	}
	return request, nil
}

func (cs *CollectionService) handleSetPlaceholderLocator(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.LocatorUpdate](raw)
	if err != nil {
		return nil, err
	}
	if err := cs.engine.SetPlaceholderLocator(ctx, token.Subject, request.Locator); err != nil {
		return nil, err
	}
	return request, nil
}

func (cs *CollectionService) handleSetRoot(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.RootUpdate](raw)
	if err != nil {
		return nil, err
	}
	if err := cs.engine.SetCommitmentRoot(ctx, token.Subject, request.Root); err != nil {
		return nil, err
	}
	return request, nil
}

func (cs *CollectionService) handleSetPassAddress(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
	request, err := decodeRequest[mintapi.PassUpdate](raw)
	if err != nil {
		return nil, err
	}
	if err := cs.engine.SetPassAddress(ctx, token.Subject, request.PassAddress); err != nil {
		return nil, err
	}
	return request, nil
}
