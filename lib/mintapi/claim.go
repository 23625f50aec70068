// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mintapi

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// claimDomain separates claim digests from transaction and
// personal_sign hashes.
const claimDomain = "\x19fairmint claim:\n"

// MaxClaimValidity bounds how far in the future a claim deadline may
// be. The service remembers accepted digests for at most this long.
const MaxClaimValidity = time.Hour

var (
	ErrClaimUnsigned    = errors.New("mintapi: claim is not signed")
	ErrClaimSignature   = errors.New("mintapi: claim signature does not match caller")
	ErrClaimExpired     = errors.New("mintapi: claim deadline has passed")
	ErrClaimDeadline    = errors.New("mintapi: claim deadline is too far in the future")
	ErrClaimAlreadyUsed = errors.New("mintapi: signed claim was already accepted")
)

// Digest is the Keccak-256 hash the caller signs. It binds the
// collection name, caller, amount, entitlement, deadline and every
// proof node.
func (r ClaimRequest) Digest(collection string) common.Hash {
	var numbers [24]byte
	binary.BigEndian.PutUint64(numbers[0:8], r.Amount)
	binary.BigEndian.PutUint64(numbers[8:16], r.Entitlement)
	binary.BigEndian.PutUint64(numbers[16:24], uint64(r.Deadline))

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(collection)))

	parts := [][]byte{[]byte(claimDomain), length[:], []byte(collection), r.Caller[:], numbers[:]}
	for _, node := range r.Proof {
		parts = append(parts, node)
	}
	return crypto.Keccak256Hash(parts...)
}

// Sign sets Caller to key's address and Signature to its signature
// over Digest.
func (r *ClaimRequest) Sign(collection string, key *ecdsa.PrivateKey) error {
	r.Caller = crypto.PubkeyToAddress(key.PublicKey)
	digest := r.Digest(collection)
	signature, err := crypto.Sign(digest[:], key)
	if err != nil {
		return fmt.Errorf("mintapi: signing claim: %w", err)
	}
	r.Signature = signature
	return nil
}

// Verify checks that Signature recovers to Caller and that Deadline
// lies in (now, now+MaxClaimValidity].
func (r ClaimRequest) Verify(collection string, now time.Time) error {
	if len(r.Signature) == 0 {
		return ErrClaimUnsigned
	}
	deadline := time.Unix(r.Deadline, 0)
	if !deadline.After(now) {
		return ErrClaimExpired
	}
	if deadline.Sub(now) > MaxClaimValidity {
		return ErrClaimDeadline
	}
	if len(r.Signature) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature has %d bytes", ErrClaimSignature, len(r.Signature))
	}
	digest := r.Digest(collection)
	public, err := crypto.SigToPub(digest[:], r.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClaimSignature, err)
	}
	if crypto.PubkeyToAddress(*public) != r.Caller {
		return ErrClaimSignature
	}
	return nil
}

// Fields returns r as the request fields of a claim call.
func (r ClaimRequest) Fields() map[string]any {
	return map[string]any{
		"caller":      r.Caller,
		"proof":       r.Proof,
		"amount":      r.Amount,
		"entitlement": r.Entitlement,
		"deadline":    r.Deadline,
		"signature":   r.Signature,
	}
}
