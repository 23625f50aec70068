// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mintstore is the SQLite implementation of mint.Store.
//
// State lives in three tables:
//
//   - collection: one row holding the root, cap, supply, pass address
//     and reveal state.
//   - claims: cumulative issuance per effective identity.
//   - allocations: issued id ranges and their owners.
//
// Each engine transition is written as one IMMEDIATE transaction that
// touches only the rows the change affects, so a claim costs two row
// writes regardless of how many units have been issued.
package mintstore
