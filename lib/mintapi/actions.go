// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mintapi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bureau-foundation/fairmint/lib/mint"
)

// Public actions.
const (
	ActionStatus  = "status"
	ActionClaim   = "claim"
	ActionLocator = "locator"
	ActionOwnerOf = "owner-of"
	ActionBalance = "balance"
	ActionClaimed = "claimed"
)

// Admin actions. These require an admin token.
const (
	ActionReveal                = "reveal"
	ActionSetBaseLocator        = "set-base-locator"
	ActionSetPlaceholderLocator = "set-placeholder-locator"
	ActionSetRoot               = "set-root"
	ActionSetPassAddress        = "set-pass-address"
)

// StatusResponse is the engine's status plus service uptime.
type StatusResponse struct {
	// Collection is the name claims are signed for.
	Collection string `json:"collection"`

	mint.Status
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ClaimRequest asks the service to claim Amount units for Caller.
// Proof is the Merkle path for the (identity, Entitlement) leaf, where
// identity is Caller or one of its delegating cold addresses.
//
// Signature is Caller's secp256k1 signature over [ClaimRequest.Digest];
// the service refuses claims not signed by their caller or past their
// Deadline (Unix seconds).
type ClaimRequest struct {
	Caller      common.Address  `json:"caller"`
	Proof       []hexutil.Bytes `json:"proof"`
	Amount      uint64          `json:"amount"`
	Entitlement uint64          `json:"entitlement"`
	Deadline    int64           `json:"deadline"`
	Signature   hexutil.Bytes   `json:"signature"`
}

// ProofNodes returns Proof as raw byte slices.
func (r ClaimRequest) ProofNodes() [][]byte {
	nodes := make([][]byte, len(r.Proof))
	for i, node := range r.Proof {
		nodes[i] = node
	}
	return nodes
}

// ClaimResponse describes a successful claim. Count is zero for a
// zero-amount claim.
type ClaimResponse struct {
	Identity common.Address `json:"identity"`
	Owner    common.Address `json:"owner"`
	FirstID  uint64         `json:"first_id"`
	Count    uint64         `json:"count"`
	Claimed  uint64         `json:"claimed"`
	Supply   uint64         `json:"supply"`
}

// UnitRequest names one unit by id.
type UnitRequest struct {
	ID uint64 `json:"id"`
}

// LocatorResponse is the answer to a locator query.
type LocatorResponse struct {
	ID      uint64 `json:"id"`
	Locator string `json:"locator"`
}

// OwnerResponse is the answer to an owner-of query.
type OwnerResponse struct {
	ID    uint64         `json:"id"`
	Owner common.Address `json:"owner"`
}

// AddressRequest names one address.
type AddressRequest struct {
	Address common.Address `json:"address"`
}

// BalanceResponse is the number of units an address owns.
type BalanceResponse struct {
	Address common.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

// ClaimedResponse is the amount already claimed against an identity's
// entitlement.
type ClaimedResponse struct {
	Identity common.Address `json:"identity"`
	Claimed  uint64         `json:"claimed"`
}

// RevealResponse carries the offset fixed by a reveal.
type RevealResponse struct {
	Offset uint64 `json:"offset"`
}

// LocatorUpdate is the body of set-base-locator and
// set-placeholder-locator.
type LocatorUpdate struct {
	Locator string `json:"locator"`
}

// RootUpdate is the body of set-root.
type RootUpdate struct {
	Root common.Hash `json:"root"`
}

// PassUpdate is the body of set-pass-address.
type PassUpdate struct {
	PassAddress common.Address `json:"pass_address"`
}
