// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Authorizer is the owner capability check consulted by every admin
// mutator. A false result surfaces as ErrNotAuthorized.
type Authorizer interface {
	Authorized(caller common.Address) bool
}

// OwnerAuthorizer admits exactly one address.
type OwnerAuthorizer struct {
	Owner common.Address
}

// Authorized implements Authorizer. The zero address is never an
// owner.
func (a OwnerAuthorizer) Authorized(caller common.Address) bool {
	return a.Owner != (common.Address{}) && caller == a.Owner
}

// PassGate is consulted after a claim's effective identity is known
// and before the ledger admits it. It is configured with the
// collection's pass address.
//
// No gating rule is defined for passes yet, so the engine ships with
// NoopPass. A gate that returns an error rejects the claim with that
// error and leaves state unchanged.
type PassGate interface {
	Admit(ctx context.Context, pass, caller, identity common.Address) error
}

// NoopPass admits every claim.
type NoopPass struct{}

// Admit implements PassGate.
func (NoopPass) Admit(context.Context, common.Address, common.Address, common.Address) error {
	return nil
}
