// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commitment

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

// MaxProofDepth bounds the number of siblings Verify will process. A
// tree of depth 256 would hold more leaves than can exist; anything
// longer is malformed input.
const MaxProofDepth = 256

// Verify reports whether proof connects leaf to root. Each proof
// element must be exactly HashSize bytes. A nil hasher, an oversized
// proof, or a malformed sibling all yield false.
//
// An empty proof verifies only when leaf equals root (a single-leaf
// tree).
func Verify(hasher Hasher, proof [][]byte, root, leaf common.Hash) bool {
	if hasher == nil || len(proof) > MaxProofDepth {
		return false
	}

	computed := leaf
	for _, element := range proof {
		if len(element) != HashSize {
			return false
		}
		computed = hashSortedPair(hasher, computed, common.BytesToHash(element))
	}
	return computed == root
}

// hashSortedPair hashes the concatenation of a and b with the smaller
// value first.
func hashSortedPair(hasher Hasher, a, b common.Hash) common.Hash {
	var combined [2 * HashSize]byte
	if bytes.Compare(a[:], b[:]) <= 0 {
		copy(combined[:HashSize], a[:])
		copy(combined[HashSize:], b[:])
	} else {
		copy(combined[:HashSize], b[:])
		copy(combined[HashSize:], a[:])
	}
	return hasher.Sum(combined[:])
}
