// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package delegation resolves which identities a calling account may
// claim for.
//
// An account ("cold") can delegate to another account ("hot") in an
// external registry. One hot account may represent many cold accounts.
// At claim time the [Resolver] asks the [Registry] for the cold
// accounts behind the caller and produces an ordered candidate list:
// the caller itself first, then each cold account in registry order.
// The claim engine tries candidates in that order and the first one
// whose allowlist leaf verifies becomes the effective identity. The
// resolver never decides which candidate is right.
//
// The registry is an external, untrusted data provider. Its failures
// surface as [ErrRegistryUnavailable] and fail only the claim that
// triggered the lookup.
package delegation
