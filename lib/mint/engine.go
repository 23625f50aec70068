// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bureau-foundation/fairmint/lib/clock"
	"github.com/bureau-foundation/fairmint/lib/commitment"
	"github.com/bureau-foundation/fairmint/lib/delegation"
	"github.com/bureau-foundation/fairmint/lib/randomness"
)

// Config configures an Engine. MaxSupply is required; everything else
// has a usable default.
type Config struct {
	// MaxSupply is the issuance cap. Unit ids are [0, MaxSupply).
	MaxSupply uint64

	// Extension is appended to revealed locators. Defaults to
	// DefaultExtension.
	Extension string

	// Hasher builds leaves and verifies proofs. Defaults to
	// commitment.Keccak256.
	Hasher commitment.Hasher

	// Root, PlaceholderLocator, BaseLocator and PassAddress seed a
	// fresh store. When the store already holds state, the persisted
	// values win: they may have been changed through the admin
	// surface since the configuration was written.
	Root               common.Hash
	PlaceholderLocator string
	BaseLocator        string
	PassAddress        common.Address

	// Resolver expands a caller into candidate identities. Nil means
	// no delegations: every caller claims only for itself.
	Resolver *delegation.Resolver

	// Randomness supplies the reveal offset. Nil makes every reveal
	// fail with ErrRandomnessUnavailable.
	Randomness randomness.Source

	// Authorizer gates admin mutators. Nil rejects every admin call.
	Authorizer Authorizer

	// Pass is consulted on every claim. Defaults to NoopPass.
	Pass PassGate

	// Store persists state. Defaults to a fresh MemoryStore.
	Store Store

	Clock  clock.Clock
	Logger *slog.Logger
}

// Engine is the claim, issuance and reveal state machine. All state is
// owned by the engine and guarded by one mutex: claim admission checks
// the per-identity entitlement and the global cap together, so they
// cannot be locked separately.
type Engine struct {
	maxSupply  uint64
	extension  string
	hasher     commitment.Hasher
	resolver   *delegation.Resolver
	randomness randomness.Source
	authorizer Authorizer
	pass       PassGate
	store      Store
	clock      clock.Clock
	logger     *slog.Logger

	mu          sync.Mutex
	root        common.Hash
	passAddress common.Address
	ledger      *ledger
	issuer      issuer
	reveal      revealState
	updatedAt   time.Time
}

// NewEngine builds an engine and restores its state from cfg.Store.
// An empty store is seeded from cfg with an initialize commit. A
// persisted snapshot that contradicts cfg (different cap or hash) or
// violates the engine's invariants returns ErrCorruptState.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.MaxSupply == 0 {
		return nil, errors.New("mint: max supply must be positive")
	}

	engine := &Engine{
		maxSupply:  cfg.MaxSupply,
		extension:  cfg.Extension,
		hasher:     cfg.Hasher,
		resolver:   cfg.Resolver,
		randomness: cfg.Randomness,
		authorizer: cfg.Authorizer,
		pass:       cfg.Pass,
		store:      cfg.Store,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		ledger:     newLedger(cfg.MaxSupply),
	}
	if engine.extension == "" {
		engine.extension = DefaultExtension
	}
	if engine.hasher == nil {
		engine.hasher = commitment.Keccak256
	}
	if engine.resolver == nil {
		engine.resolver = delegation.NewResolver(nil)
	}
	if engine.pass == nil {
		engine.pass = NoopPass{}
	}
	if engine.store == nil {
		engine.store = NewMemoryStore()
	}
	if engine.clock == nil {
		engine.clock = clock.Real()
	}
	if engine.logger == nil {
		engine.logger = slog.New(slog.DiscardHandler)
	}

	snapshot, err := engine.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("mint: loading state: %w", err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	if snapshot != nil {
		if err := engine.restore(snapshot); err != nil {
			return nil, err
		}
		engine.logger.Info("restored collection state",
			"supply", engine.ledger.supply,
			"max_supply", engine.maxSupply,
			"claimants", len(engine.ledger.claimed),
			"revealed", engine.reveal.revealed(),
		)
		if snapshot.Root != cfg.Root && cfg.Root != (common.Hash{}) {
			engine.logger.Warn("persisted commitment root differs from configuration, keeping persisted root",
				"persisted", snapshot.Root.Hex(),
				"configured", cfg.Root.Hex(),
			)
		}
		return engine, nil
	}

	engine.root = cfg.Root
	engine.passAddress = cfg.PassAddress
	engine.reveal = revealState{
		placeholder: cfg.PlaceholderLocator,
		base:        cfg.BaseLocator,
	}
	engine.updatedAt = engine.now()
	change := Change{Kind: ChangeInitialize, At: engine.updatedAt.Unix()}
	if err := engine.store.Commit(ctx, change, engine.snapshotLocked); err != nil {
		return nil, fmt.Errorf("mint: seeding state: %w", err)
	}
	engine.logger.Info("initialized collection",
		"max_supply", engine.maxSupply,
		"root", engine.root.Hex(),
		"hash", engine.hasher.Name(),
	)
	return engine, nil
}

// ClaimRequest is one call to Claim.
type ClaimRequest struct {
	// Caller is the account invoking the claim. Issued units are
	// owned by Caller even when the proven identity is a delegator.
	Caller common.Address

	// Proof is the sibling path for leaf(identity, Entitlement).
	Proof [][]byte

	// Amount is the number of units requested. Zero is accepted as a
	// no-op once the proof verifies.
	Amount uint64

	// Entitlement is the ceiling encoded in the proven leaf.
	Entitlement uint64
}

// ClaimReceipt describes an accepted claim.
type ClaimReceipt struct {
	// EffectiveIdentity is the identity whose leaf verified.
	EffectiveIdentity common.Address

	// Owner received the units (the caller).
	Owner common.Address

	// FirstID and Count describe the issued range [FirstID,
	// FirstID+Count). Count is zero for a zero-amount claim.
	FirstID uint64
	Count   uint64

	// Cumulative is EffectiveIdentity's total issuance after the
	// claim.
	Cumulative uint64

	// Supply is the global issuance after the claim.
	Supply uint64
}

// Claim verifies req against the live root under every candidate
// identity of req.Caller, then issues req.Amount units to the caller
// if the first verifying identity's entitlement and the global cap
// both allow it. A rejected claim changes nothing.
func (e *Engine) Claim(ctx context.Context, req ClaimRequest) (*ClaimReceipt, error) {
	// The registry is an external provider; consult it before taking
	// the lock so a slow registry does not stall unrelated calls.
	candidates, err := e.resolver.Candidates(ctx, req.Caller)
	if err != nil {
		return nil, fmt.Errorf("mint: resolving candidates: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	identity, ok := e.matchLocked(candidates, req.Proof, req.Entitlement)
	if !ok {
		return nil, fmt.Errorf("%w: no candidate of %s matches entitlement %d under root %s",
			ErrInvalidProof, req.Caller.Hex(), req.Entitlement, e.root.Hex())
	}

	if err := e.pass.Admit(ctx, e.passAddress, req.Caller, identity); err != nil {
		return nil, fmt.Errorf("mint: pass gate: %w", err)
	}

	if err := e.ledger.admit(identity, req.Entitlement, req.Amount); err != nil {
		return nil, err
	}

	if req.Amount == 0 {
		return &ClaimReceipt{
			EffectiveIdentity: identity,
			Owner:             req.Caller,
			FirstID:           e.issuer.next,
			Cumulative:        e.ledger.claimed[identity],
			Supply:            e.ledger.supply,
		}, nil
	}

	previousUpdate := e.updatedAt
	claimed := e.ledger.record(identity, req.Amount)
	allocation := e.issuer.issue(req.Caller, req.Amount)
	e.updatedAt = e.now()
	e.checkInvariantsLocked()

	change := Change{
		Kind:       ChangeClaim,
		Identity:   identity,
		Claimed:    claimed,
		Allocation: allocation,
		Supply:     e.ledger.supply,
		At:         e.updatedAt.Unix(),
	}
	if err := e.store.Commit(ctx, change, e.snapshotLocked); err != nil {
		e.issuer.rollback(allocation)
		e.ledger.unrecord(identity, req.Amount)
		e.updatedAt = previousUpdate
		return nil, fmt.Errorf("mint: persisting claim: %w", err)
	}

	e.logger.Info("claim issued",
		"caller", req.Caller.Hex(),
		"identity", identity.Hex(),
		"first_id", allocation.First,
		"count", allocation.Count,
		"claimed", claimed,
		"supply", e.ledger.supply,
	)
	return &ClaimReceipt{
		EffectiveIdentity: identity,
		Owner:             req.Caller,
		FirstID:           allocation.First,
		Count:             allocation.Count,
		Cumulative:        claimed,
		Supply:            e.ledger.supply,
	}, nil
}

// matchLocked returns the first candidate whose leaf verifies.
func (e *Engine) matchLocked(candidates []common.Address, proof [][]byte, entitlement uint64) (common.Address, bool) {
	for _, candidate := range candidates {
		leaf := commitment.Leaf(e.hasher, candidate, entitlement)
		if commitment.Verify(e.hasher, proof, e.root, leaf) {
			return candidate, true
		}
	}
	return common.Address{}, false
}

// Reveal requests one random value, derives the metadata offset from
// it, and moves the collection to the revealed phase. It returns the
// offset. A randomness failure leaves the collection sealed.
func (e *Engine) Reveal(ctx context.Context, caller common.Address) (uint64, error) {
	if err := e.authorize(caller, "reveal"); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reveal.revealed() {
		return 0, ErrAlreadyRevealed
	}
	if e.randomness == nil {
		return 0, fmt.Errorf("%w: no source configured", ErrRandomnessUnavailable)
	}
	value, err := e.randomness.RequestRandom(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRandomnessUnavailable, err)
	}
	if value == nil || value.Sign() < 0 {
		return 0, fmt.Errorf("%w: source returned %v", ErrRandomnessUnavailable, value)
	}
	offset := new(big.Int).Mod(value, new(big.Int).SetUint64(e.maxSupply)).Uint64()

	previous, previousUpdate := e.reveal, e.updatedAt
	e.updatedAt = e.now()
	e.reveal.phase = phaseRevealed
	e.reveal.offset = offset
	e.reveal.revealedAt = e.updatedAt

	change := Change{Kind: ChangeReveal, Offset: offset, At: e.updatedAt.Unix()}
	if err := e.store.Commit(ctx, change, e.snapshotLocked); err != nil {
		e.reveal, e.updatedAt = previous, previousUpdate
		return 0, fmt.Errorf("mint: persisting reveal: %w", err)
	}

	e.logger.Info("collection revealed",
		"caller", caller.Hex(),
		"offset", offset,
		"supply", e.ledger.supply,
	)
	return offset, nil
}

// SetBaseLocator replaces the revealed metadata prefix. It fails with
// ErrRevealedMetadataLocked once the collection is revealed.
func (e *Engine) SetBaseLocator(ctx context.Context, caller common.Address, locator string) error {
	if err := e.authorize(caller, "set-base-locator"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reveal.revealed() {
		return ErrRevealedMetadataLocked
	}
	previous := e.reveal.base
	return e.mutateLocked(ctx, caller, Change{Kind: ChangeBaseLocator, Locator: locator},
		func() { e.reveal.base = locator },
		func() { e.reveal.base = previous },
	)
}

// SetPlaceholderLocator replaces the pre-reveal locator. It is allowed
// in either phase; after reveal the placeholder is no longer served.
func (e *Engine) SetPlaceholderLocator(ctx context.Context, caller common.Address, locator string) error {
	if err := e.authorize(caller, "set-placeholder-locator"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.reveal.placeholder
	return e.mutateLocked(ctx, caller, Change{Kind: ChangePlaceholderLocator, Locator: locator},
		func() { e.reveal.placeholder = locator },
		func() { e.reveal.placeholder = previous },
	)
}

// SetCommitmentRoot replaces the live root. Proofs built against the
// previous root stop verifying immediately; cumulative claim records
// are kept.
func (e *Engine) SetCommitmentRoot(ctx context.Context, caller common.Address, root common.Hash) error {
	if err := e.authorize(caller, "set-root"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.root
	return e.mutateLocked(ctx, caller, Change{Kind: ChangeRoot, Root: root},
		func() { e.root = root },
		func() { e.root = previous },
	)
}

// SetPassAddress replaces the address handed to the pass gate.
func (e *Engine) SetPassAddress(ctx context.Context, caller common.Address, pass common.Address) error {
	if err := e.authorize(caller, "set-pass-address"); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.passAddress
	return e.mutateLocked(ctx, caller, Change{Kind: ChangePassAddress, PassAddress: pass},
		func() { e.passAddress = pass },
		func() { e.passAddress = previous },
	)
}

// mutateLocked applies an admin mutation, commits it, and undoes it if
// the commit fails.
func (e *Engine) mutateLocked(ctx context.Context, caller common.Address, change Change, apply, undo func()) error {
	previousUpdate := e.updatedAt
	e.updatedAt = e.now()
	change.At = e.updatedAt.Unix()
	apply()
	if err := e.store.Commit(ctx, change, e.snapshotLocked); err != nil {
		undo()
		e.updatedAt = previousUpdate
		return fmt.Errorf("mint: persisting %s: %w", change.Kind, err)
	}
	e.logger.Info("admin change committed",
		"kind", string(change.Kind),
		"caller", caller.Hex(),
	)
	return nil
}

func (e *Engine) authorize(caller common.Address, action string) error {
	if e.authorizer == nil || !e.authorizer.Authorized(caller) {
		e.logger.Warn("rejected admin call", "action", action, "caller", caller.Hex())
		return fmt.Errorf("%w: %s may not %s", ErrNotAuthorized, caller.Hex(), action)
	}
	return nil
}

// Locator resolves id to its metadata locator: the placeholder before
// reveal, base + ((id + offset) mod MaxSupply) + extension after.
// Ids need not be issued yet, but must be below MaxSupply.
func (e *Engine) Locator(id uint64) (string, error) {
	if id >= e.maxSupply {
		return "", fmt.Errorf("%w: %d (max supply %d)", ErrUnitOutOfRange, id, e.maxSupply)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reveal.locator(id, e.maxSupply, e.extension), nil
}

// OwnerOf returns the account that received unit id.
func (e *Engine) OwnerOf(id uint64) (common.Address, error) {
	if id >= e.maxSupply {
		return common.Address{}, fmt.Errorf("%w: %d (max supply %d)", ErrUnitOutOfRange, id, e.maxSupply)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	owner, ok := e.issuer.ownerOf(id)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %d (supply %d)", ErrUnitNotIssued, id, e.ledger.supply)
	}
	return owner, nil
}

// BalanceOf returns the number of units issued to owner.
func (e *Engine) BalanceOf(owner common.Address) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.issuer.balanceOf(owner)
}

// Claimed returns identity's cumulative issuance.
func (e *Engine) Claimed(identity common.Address) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.claimed[identity]
}

// Supply returns the number of units issued so far.
func (e *Engine) Supply() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.supply
}

// MaxSupply returns the issuance cap.
func (e *Engine) MaxSupply() uint64 { return e.maxSupply }

// Revealed reports whether the collection has been revealed.
func (e *Engine) Revealed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reveal.revealed()
}

// Root returns the live commitment root.
func (e *Engine) Root() common.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.root
}

// PassAddress returns the configured pass address.
func (e *Engine) PassAddress() common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passAddress
}

// Hasher returns the commitment hash the engine verifies with.
func (e *Engine) Hasher() commitment.Hasher { return e.hasher }

// Status is a point-in-time summary of the collection.
type Status struct {
	MaxSupply          uint64         `json:"max_supply"`
	Supply             uint64         `json:"supply"`
	Claimants          int            `json:"claimants"`
	Root               common.Hash    `json:"root"`
	Hash               string         `json:"hash"`
	PassAddress        common.Address `json:"pass_address"`
	Revealed           bool           `json:"revealed"`
	Offset             uint64         `json:"offset,omitempty"`
	PlaceholderLocator string         `json:"placeholder_locator"`
	BaseLocator        string         `json:"base_locator"`
	Extension          string         `json:"extension"`
	UpdatedAt          int64          `json:"updated_at"`
}

// Status returns a consistent summary of the engine's state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	status := Status{
		MaxSupply:          e.maxSupply,
		Supply:             e.ledger.supply,
		Claimants:          len(e.ledger.claimed),
		Root:               e.root,
		Hash:               e.hasher.Name(),
		PassAddress:        e.passAddress,
		Revealed:           e.reveal.revealed(),
		PlaceholderLocator: e.reveal.placeholder,
		BaseLocator:        e.reveal.base,
		Extension:          e.extension,
		UpdatedAt:          e.updatedAt.Unix(),
	}
	if status.Revealed {
		status.Offset = e.reveal.offset
	}
	return status
}

// Snapshot returns a copy of the complete engine state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() *Snapshot {
	claims := make([]ClaimRecord, 0, len(e.ledger.claimed))
	for identity, claimed := range e.ledger.claimed {
		claims = append(claims, ClaimRecord{Identity: identity, Claimed: claimed})
	}
	slices.SortFunc(claims, func(a, b ClaimRecord) int {
		return bytes.Compare(a.Identity[:], b.Identity[:])
	})
	return &Snapshot{
		Root:        e.root,
		Hash:        e.hasher.Name(),
		MaxSupply:   e.maxSupply,
		Supply:      e.ledger.supply,
		PassAddress: e.passAddress,
		Claims:      claims,
		Allocations: slices.Clone(e.issuer.allocations),
		Reveal:      e.reveal.snapshot(),
		UpdatedAt:   e.updatedAt.Unix(),
	}
}

// restore loads snapshot into the engine after checking it against the
// configuration and the engine's invariants.
func (e *Engine) restore(snapshot *Snapshot) error {
	if snapshot.MaxSupply != e.maxSupply {
		return fmt.Errorf("%w: persisted max supply %d, configured %d",
			ErrCorruptState, snapshot.MaxSupply, e.maxSupply)
	}
	if snapshot.Hash != e.hasher.Name() {
		return fmt.Errorf("%w: persisted hash %q, configured %q",
			ErrCorruptState, snapshot.Hash, e.hasher.Name())
	}
	if snapshot.Supply > snapshot.MaxSupply {
		return fmt.Errorf("%w: supply %d exceeds max supply %d",
			ErrCorruptState, snapshot.Supply, snapshot.MaxSupply)
	}

	var claimedTotal uint64
	for _, record := range snapshot.Claims {
		if record.Claimed == 0 {
			return fmt.Errorf("%w: zero claim record for %s", ErrCorruptState, record.Identity.Hex())
		}
		if _, duplicate := e.ledger.claimed[record.Identity]; duplicate {
			return fmt.Errorf("%w: duplicate claim record for %s", ErrCorruptState, record.Identity.Hex())
		}
		if record.Claimed > snapshot.Supply-claimedTotal {
			return fmt.Errorf("%w: claim records exceed supply %d", ErrCorruptState, snapshot.Supply)
		}
		claimedTotal += record.Claimed
		e.ledger.claimed[record.Identity] = record.Claimed
	}
	if claimedTotal != snapshot.Supply {
		return fmt.Errorf("%w: claim records total %d, supply %d", ErrCorruptState, claimedTotal, snapshot.Supply)
	}

	for _, allocation := range snapshot.Allocations {
		if allocation.Count == 0 || allocation.First != e.issuer.next {
			return fmt.Errorf("%w: allocation [%d, +%d) does not continue at %d",
				ErrCorruptState, allocation.First, allocation.Count, e.issuer.next)
		}
		if allocation.Count > snapshot.Supply-e.issuer.next {
			return fmt.Errorf("%w: allocations exceed supply %d", ErrCorruptState, snapshot.Supply)
		}
		e.issuer.allocations = append(e.issuer.allocations, allocation)
		e.issuer.next = allocation.End()
	}
	if e.issuer.next != snapshot.Supply {
		return fmt.Errorf("%w: allocations end at %d, supply %d", ErrCorruptState, e.issuer.next, snapshot.Supply)
	}

	if snapshot.Reveal.Revealed && snapshot.Reveal.Offset >= e.maxSupply {
		return fmt.Errorf("%w: offset %d not below max supply %d",
			ErrCorruptState, snapshot.Reveal.Offset, e.maxSupply)
	}

	e.ledger.supply = snapshot.Supply
	e.root = snapshot.Root
	e.passAddress = snapshot.PassAddress
	e.reveal = revealStateFrom(snapshot.Reveal)
	e.updatedAt = time.Unix(snapshot.UpdatedAt, 0).UTC()
	return nil
}

// checkInvariantsLocked panics if the ledger and issuer disagree. A
// failure here is a programming error, not a rejected request.
func (e *Engine) checkInvariantsLocked() {
	if e.ledger.supply > e.maxSupply {
		panic(fmt.Sprintf("mint: supply %d exceeds max supply %d", e.ledger.supply, e.maxSupply))
	}
	if e.ledger.supply != e.issuer.next {
		panic(fmt.Sprintf("mint: ledger supply %d disagrees with issuer next id %d", e.ledger.supply, e.issuer.next))
	}
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}
