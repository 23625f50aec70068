// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import "errors"

// Claim rejections. Each is returned wrapped with detail; test with
// errors.Is.
var (
	// ErrInvalidProof: no candidate identity's leaf verifies against
	// the live commitment root.
	ErrInvalidProof = errors.New("mint: invalid proof")

	// ErrClaimExceedsAllowance: the claim would push the effective
	// identity's cumulative issuance past its proven entitlement.
	ErrClaimExceedsAllowance = errors.New("mint: claim exceeds allowance")

	// ErrSupplyExceeded: the claim would push total issuance past
	// MaxSupply.
	ErrSupplyExceeded = errors.New("mint: claim would exceed max supply")
)

// Reveal and admin rejections.
var (
	ErrAlreadyRevealed        = errors.New("mint: collection already revealed")
	ErrRevealedMetadataLocked = errors.New("mint: collection revealed, base locator is locked")
	ErrNotAuthorized          = errors.New("mint: caller is not authorized")

	// ErrRandomnessUnavailable wraps a failure of the randomness
	// source. The collection stays sealed; reveal may be retried.
	ErrRandomnessUnavailable = errors.New("mint: randomness source unavailable")
)

// Read errors.
var (
	ErrUnitOutOfRange = errors.New("mint: unit id outside [0, max supply)")
	ErrUnitNotIssued  = errors.New("mint: unit id not issued")
)

// ErrCorruptState is returned when a persisted snapshot violates the
// engine's invariants or does not match the engine configuration.
var ErrCorruptState = errors.New("mint: persisted state is inconsistent")
