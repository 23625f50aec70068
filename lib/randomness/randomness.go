// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package randomness provides the random value consumed once, at
// reveal, to derive the metadata offset.
//
// The engine treats a Source as an untrusted external provider: an
// error from RequestRandom fails that reveal attempt and leaves the
// collection sealed, so the operator can retry.
package randomness

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Source produces one unsigned 256-bit random value per request.
type Source interface {
	RequestRandom(ctx context.Context) (*big.Int, error)
}

// CryptoSource draws 32 bytes from crypto/rand.
type CryptoSource struct{}

// RequestRandom implements Source.
func (CryptoSource) RequestRandom(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buffer [32]byte
	if _, err := rand.Read(buffer[:]); err != nil {
		return nil, fmt.Errorf("randomness: reading crypto/rand: %w", err)
	}
	return new(big.Int).SetBytes(buffer[:]), nil
}

// Fixed always returns the same value. It exists for tests and for
// rehearsing a reveal with a known offset.
type Fixed struct {
	Value *big.Int
}

// ErrNoValue is returned by a Fixed source with a nil Value.
var ErrNoValue = errors.New("randomness: fixed source has no value")

// RequestRandom implements Source. The returned value is a copy.
func (f Fixed) RequestRandom(context.Context) (*big.Int, error) {
	if f.Value == nil {
		return nil, ErrNoValue
	}
	if f.Value.Sign() < 0 {
		return nil, fmt.Errorf("randomness: fixed value %s is negative", f.Value)
	}
	return new(big.Int).Set(f.Value), nil
}

// Parse returns the Source named by kind. "crypto" (or empty) selects
// CryptoSource; "fixed" selects Fixed with the decimal or 0x-prefixed
// value.
func Parse(kind, value string) (Source, error) {
	switch kind {
	case "", "crypto":
		return CryptoSource{}, nil
	case "fixed":
		parsed, ok := new(big.Int).SetString(value, 0)
		if !ok {
			return nil, fmt.Errorf("randomness: invalid fixed value %q", value)
		}
		return Fixed{Value: parsed}, nil
	default:
		return nil, fmt.Errorf("randomness: unknown source %q (want crypto or fixed)", kind)
	}
}
