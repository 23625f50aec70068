// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package admintoken

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/bureau-foundation/fairmint/lib/codec"
)

const signatureSize = ed25519.SignatureSize

// DefaultAudience is the audience the service expects when none is
// configured.
const DefaultAudience = "fairmint"

// Token is the signed payload.
type Token struct {
	// Subject is the admin address the token speaks for.
	Subject common.Address `cbor:"1,keyasint"`

	// Audience names the collection service the token is scoped to.
	Audience string `cbor:"2,keyasint"`

	// ID is a random identifier, logged with every admin call.
	ID string `cbor:"3,keyasint"`

	// IssuedAt and ExpiresAt are Unix seconds.
	IssuedAt  int64 `cbor:"4,keyasint"`
	ExpiresAt int64 `cbor:"5,keyasint"`
}

var (
	ErrTokenTooShort    = errors.New("admintoken: token too short for signature")
	ErrInvalidSignature = errors.New("admintoken: invalid Ed25519 signature")
	ErrTokenExpired     = errors.New("admintoken: token has expired")
	ErrAudienceMismatch = errors.New("admintoken: audience does not match")
	ErrKeyMismatch      = errors.New("admintoken: private key seed does not match its public half")
)

// New returns a token for subject valid from now for ttl.
func New(subject common.Address, audience string, now time.Time, ttl time.Duration) *Token {
	return &Token{
		Subject:   subject,
		Audience:  audience,
		ID:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// Mint signs token and returns its wire form.
func Mint(privateKey ed25519.PrivateKey, token *Token) ([]byte, error) {
	payload, err := codec.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("admintoken: encoding payload: %w", err)
	}
	signature := ed25519.Sign(privateKey, payload)

	result := make([]byte, len(payload)+signatureSize)
	copy(result, payload)
	copy(result[len(payload):], signature)
	return result, nil
}

// VerifyAt checks the signature, expiry at now, and audience, and
// returns the decoded token.
func VerifyAt(publicKey ed25519.PublicKey, tokenBytes []byte, audience string, now time.Time) (*Token, error) {
	if len(tokenBytes) <= signatureSize {
		return nil, ErrTokenTooShort
	}
	splitPoint := len(tokenBytes) - signatureSize
	payload, signature := tokenBytes[:splitPoint], tokenBytes[splitPoint:]

	if !ed25519.Verify(publicKey, payload, signature) {
		return nil, ErrInvalidSignature
	}

	var token Token
	if err := codec.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("admintoken: decoding payload: %w", err)
	}
	if now.Unix() >= token.ExpiresAt {
		return nil, ErrTokenExpired
	}
	if token.Audience != audience {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrAudienceMismatch, token.Audience, audience)
	}
	return &token, nil
}
