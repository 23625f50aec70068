// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"
	"time"

	"github.com/bureau-foundation/fairmint/lib/admintoken"
	"github.com/bureau-foundation/fairmint/lib/clock"
	"github.com/bureau-foundation/fairmint/lib/codec"
)

// AuthActionFunc processes an authenticated request. The token has
// already been verified; raw is the full CBOR request.
type AuthActionFunc func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error)

// AuthConfig holds what the server needs to verify admin tokens.
type AuthConfig struct {
	// PublicKey verifies token signatures.
	PublicKey ed25519.PublicKey

	// Audience must match the token's audience field.
	Audience string

	// Revocations rejects tokens by ID. Nil means nothing is revoked.
	Revocations *RevocationList

	// Clock supplies the time for expiry checks. Nil means the real
	// clock.
	Clock clock.Clock
}

func (c *AuthConfig) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

// RevocationList is a set of revoked token IDs. Each entry is kept
// until the revoked token's own expiry, after which the token would be
// rejected anyway. An entry with a zero expiry never lapses.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewRevocationList returns an empty list.
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke adds id to the list until expiresAt, or permanently when
// expiresAt is zero.
func (r *RevocationList) Revoke(id string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = expiresAt
}

// IsRevoked reports whether id is revoked. Entries past their expiry
// are pruned as a side effect.
func (r *RevocationList) IsRevoked(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for entry, expiresAt := range r.entries {
		if !expiresAt.IsZero() && !now.Before(expiresAt) {
			delete(r.entries, entry)
		}
	}
	_, revoked := r.entries[id]
	return revoked
}

// Len returns the number of live entries.
func (r *RevocationList) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// authError is returned to the client verbatim. Anything not mapped
// to a specific message is reported as "authentication failed" so
// that signature and decoding details do not leak.
type authError struct {
	message string
}

func (e *authError) Error() string { return e.message }

var (
	errMissingToken = &authError{"missing token field"}
	errTokenExpired = &authError{"token expired"}
	errTokenRevoked = &authError{"token revoked"}
	errAuthFailed   = &authError{"authentication failed"}
)

// authenticate extracts and verifies the token field of raw.
func (c *AuthConfig) authenticate(raw []byte) (*admintoken.Token, error) {
	var envelope struct {
		Token []byte `cbor:"token"`
	}
	if err := codec.Unmarshal(raw, &envelope); err != nil {
		return nil, errAuthFailed
	}
	if len(envelope.Token) == 0 {
		return nil, errMissingToken
	}

	now := c.now()
	token, err := admintoken.VerifyAt(c.PublicKey, envelope.Token, c.Audience, now)
	if err != nil {
		if errors.Is(err, admintoken.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, errAuthFailed
	}
	if c.Revocations != nil && c.Revocations.IsRevoked(token.ID, now) {
		return nil, errTokenRevoked
	}
	return token, nil
}
