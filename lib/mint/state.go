// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is the complete durable state of a collection. Stores that
// persist whole-state images (lib/statefile) write it as is; row-based
// stores (lib/mintstore) rebuild it on Load.
type Snapshot struct {
	// Root is the live commitment root.
	Root common.Hash `json:"root"`

	// Hash names the commitment hash function the root was built
	// with. A snapshot cannot be restored under a different hash.
	Hash string `json:"hash"`

	MaxSupply   uint64         `json:"max_supply"`
	Supply      uint64         `json:"supply"`
	PassAddress common.Address `json:"pass_address"`

	// Claims holds one record per effective identity that has
	// claimed, sorted by address.
	Claims []ClaimRecord `json:"claims"`

	// Allocations are the issued id ranges in id order. They tile
	// [0, Supply) without gaps.
	Allocations []Allocation `json:"allocations"`

	Reveal RevealSnapshot `json:"reveal"`

	// UpdatedAt is the Unix time (seconds) of the last committed
	// transition.
	UpdatedAt int64 `json:"updated_at"`
}

// ClaimRecord is the cumulative amount issued against one identity's
// allowlist entry.
type ClaimRecord struct {
	Identity common.Address `json:"identity"`
	Claimed  uint64         `json:"claimed"`
}

// Allocation is a contiguous range of unit ids issued to one owner by
// a single claim: ids [First, First+Count).
type Allocation struct {
	First uint64         `json:"first"`
	Count uint64         `json:"count"`
	Owner common.Address `json:"owner"`
}

// End returns one past the last id of the allocation.
func (a Allocation) End() uint64 { return a.First + a.Count }

// RevealSnapshot is the persisted form of the reveal state.
type RevealSnapshot struct {
	PlaceholderLocator string `json:"placeholder_locator"`
	BaseLocator        string `json:"base_locator"`
	Revealed           bool   `json:"revealed"`
	Offset             uint64 `json:"offset"`
	RevealedAt         int64  `json:"revealed_at,omitempty"`
}

// ChangeKind identifies the transition carried by a Change.
type ChangeKind string

const (
	// ChangeInitialize seeds an empty store with the engine's initial
	// configuration. The full state is in the snapshot.
	ChangeInitialize ChangeKind = "initialize"

	ChangeClaim              ChangeKind = "claim"
	ChangeReveal             ChangeKind = "reveal"
	ChangeBaseLocator        ChangeKind = "set-base-locator"
	ChangePlaceholderLocator ChangeKind = "set-placeholder-locator"
	ChangeRoot               ChangeKind = "set-root"
	ChangePassAddress        ChangeKind = "set-pass-address"
)

// Change describes one committed transition. Only the fields relevant
// to Kind are set; values are post-transition.
type Change struct {
	Kind ChangeKind

	// ChangeClaim.
	Identity   common.Address
	Claimed    uint64
	Allocation Allocation
	Supply     uint64

	// ChangeReveal.
	Offset uint64

	// ChangeBaseLocator, ChangePlaceholderLocator.
	Locator string

	// ChangeRoot.
	Root common.Hash

	// ChangePassAddress.
	PassAddress common.Address

	// At is the Unix time (seconds) of the transition.
	At int64
}
