// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ledger tracks cumulative issuance per effective identity and in
// total. It has no lock of its own; the Engine mutex covers it.
type ledger struct {
	maxSupply uint64
	supply    uint64
	claimed   map[common.Address]uint64
}

func newLedger(maxSupply uint64) *ledger {
	return &ledger{
		maxSupply: maxSupply,
		claimed:   make(map[common.Address]uint64),
	}
}

// admit checks a claim of amount against the identity's proven
// entitlement and against the cap. It does not mutate.
//
// The entitlement check comes first: a request that breaks both limits
// reports the allowance, which the caller can fix by asking for less.
func (l *ledger) admit(identity common.Address, entitlement, amount uint64) error {
	already := l.claimed[identity]
	// already can exceed entitlement after the root is replaced by an
	// allowlist with a smaller entry.
	if already > entitlement || amount > entitlement-already {
		return fmt.Errorf("%w: %s has claimed %d of %d, requested %d",
			ErrClaimExceedsAllowance, identity.Hex(), already, entitlement, amount)
	}
	if amount > l.maxSupply-l.supply {
		return fmt.Errorf("%w: supply %d of %d, requested %d",
			ErrSupplyExceeded, l.supply, l.maxSupply, amount)
	}
	return nil
}

// record applies an admitted claim and returns the identity's new
// cumulative total.
func (l *ledger) record(identity common.Address, amount uint64) uint64 {
	l.claimed[identity] += amount
	l.supply += amount
	return l.claimed[identity]
}

// unrecord reverses record. Only valid immediately after the matching
// record, under the same lock hold.
func (l *ledger) unrecord(identity common.Address, amount uint64) {
	remaining := l.claimed[identity] - amount
	if remaining == 0 {
		delete(l.claimed, identity)
	} else {
		l.claimed[identity] = remaining
	}
	l.supply -= amount
}
