// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commitment implements the allowlist commitment scheme: leaf
// encoding, a sorted-pair binary Merkle tree, and proof verification.
//
// A leaf commits to one (address, entitlement) pair using the packed
// layout address[20] ‖ "_" ‖ uint256_be(entitlement)[32], the same
// bytes Solidity's abi.encodePacked(address, "_", uint256) produces.
// Because the entitlement is inside the leaf, a valid proof attests
// both that the address is allowlisted and the exact ceiling it may
// claim.
//
// Interior nodes hash their two children in byte-wise sorted order.
// A verifier therefore never needs to know whether a sibling sat on
// the left or the right, and proof validity is independent of leaf
// position. When a tree level has an odd number of nodes the last node
// is promoted unchanged; it is never paired with itself.
//
// Two hash functions are available. [Keccak256] is the default and
// produces roots compatible with EVM tooling. [BLAKE3] uses keyed
// BLAKE3 under the "fairmint.commitment" domain key for deployments
// that have no EVM counterpart.
//
// [Verify] is pure and total: malformed proofs (wrong sibling length,
// absurd depth) are verification failures, never panics.
package commitment
