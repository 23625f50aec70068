// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delegation

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrRegistryUnavailable wraps every failure returned by a Registry.
var ErrRegistryUnavailable = errors.New("delegation: registry unavailable")

// Registry is the read contract of an external delegation registry.
type Registry interface {
	// ColdAddressesOf returns the accounts currently delegating to
	// hot, in the registry's natural order. An empty result means no
	// delegations.
	ColdAddressesOf(ctx context.Context, hot common.Address) ([]common.Address, error)
}

// Resolver turns a caller into its ordered candidate identities.
type Resolver struct {
	registry Registry
}

// NewResolver returns a Resolver backed by registry. A nil registry
// means no delegations exist: every caller resolves to itself only.
func NewResolver(registry Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Candidates returns caller followed by every cold account delegating
// to it. Repeated addresses (including a registry entry equal to the
// caller) appear once, at their first position.
func (r *Resolver) Candidates(ctx context.Context, caller common.Address) ([]common.Address, error) {
	if r.registry == nil {
		return []common.Address{caller}, nil
	}

	cold, err := r.registry.ColdAddressesOf(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("%w: cold addresses of %s: %w", ErrRegistryUnavailable, caller.Hex(), err)
	}

	candidates := make([]common.Address, 0, len(cold)+1)
	candidates = append(candidates, caller)
	seen := map[common.Address]struct{}{caller: {}}
	for _, address := range cold {
		if _, duplicate := seen[address]; duplicate {
			continue
		}
		seen[address] = struct{}{}
		candidates = append(candidates, address)
	}
	return candidates, nil
}
