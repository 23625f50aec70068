// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mint is the claim engine: it verifies allowlist claims,
// accounts for entitlements and the supply cap, issues sequential
// unit ids, and maps ids to metadata locators before and after the
// one-time reveal.
//
// # State
//
// An [Engine] owns all mutable state: the live commitment root, the
// claim ledger (cumulative amount per effective identity), the global
// supply, the issued-unit allocations, the reveal state, and the pass
// contract address. A single mutex guards all of it. Entitlement and
// cap checks read the ledger and the supply together, so splitting
// them across locks would let two concurrent claims each pass alone
// and jointly overshoot.
//
// # Claims
//
// [Engine.Claim] resolves the caller's candidate identities (itself,
// then its delegators), takes the first candidate whose leaf verifies
// against the live root as the effective identity, checks the
// entitlement proven by that leaf and the supply cap, and issues the
// units to the caller. The ledger is keyed by the effective identity;
// the units belong to the caller.
//
// # Persistence
//
// Every accepted transition is handed to a [Store] while the lock is
// held. If the store fails, the in-memory change is undone before the
// lock is released, so memory and storage never diverge and a failed
// call leaves no trace.
//
// # Reveal
//
// The reveal state is a two-phase machine (sealed, revealed). Sealed
// collections resolve every id to the placeholder locator. [Engine.Reveal]
// draws one random value, fixes offset = value mod MaxSupply, and
// moves to revealed; from then on id resolves to
// base + ((id + offset) mod MaxSupply) + extension and the base
// locator is frozen.
package mint
