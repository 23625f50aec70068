// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commitment

import (
	"bytes"
	"errors"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// ErrEmptyTree is returned when a tree is built from no leaves.
var ErrEmptyTree = errors.New("commitment: tree needs at least one leaf")

// Tree is a sorted-pair Merkle tree over leaf hashes. Leaves are
// sorted before the tree is built, so the root depends only on the
// set of leaves and not on their input order.
//
// Tree is immutable after construction and safe for concurrent reads.
type Tree struct {
	hasher Hasher

	// layers[0] holds the sorted leaves; the last layer holds the
	// root alone.
	layers [][]common.Hash
}

// NewTree builds a tree over leaves using hasher. The caller's slice
// is not modified.
func NewTree(hasher Hasher, leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	level := slices.Clone(leaves)
	slices.SortFunc(level, func(a, b common.Hash) int {
		return bytes.Compare(a[:], b[:])
	})

	layers := [][]common.Hash{level}
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				// Odd node: promote without hashing.
				next = append(next, level[i])
				continue
			}
			next = append(next, hashSortedPair(hasher, level[i], level[i+1]))
		}
		layers = append(layers, next)
		level = next
	}

	return &Tree{hasher: hasher, layers: layers}, nil
}

// Root returns the tree's root digest.
func (t *Tree) Root() common.Hash {
	return t.layers[len(t.layers)-1][0]
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.layers[0])
}

// Hasher returns the hash function the tree was built with.
func (t *Tree) Hasher() Hasher {
	return t.hasher
}

// Proof returns the sibling path for leaf, bottom-up. The second
// result is false when leaf is not in the tree. Promoted nodes
// contribute no sibling for their level, so proofs for different
// leaves may differ in length.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, bool) {
	index, found := slices.BinarySearchFunc(t.layers[0], leaf, func(a, b common.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	if !found {
		return nil, false
	}

	var proof []common.Hash
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := index ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		index /= 2
	}
	return proof, true
}

// ProofBytes converts a proof to the raw form accepted by Verify.
func ProofBytes(proof []common.Hash) [][]byte {
	raw := make([][]byte, len(proof))
	for i, element := range proof {
		raw[i] = bytes.Clone(element[:])
	}
	return raw
}
