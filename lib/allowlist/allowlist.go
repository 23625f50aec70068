// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package allowlist builds commitment trees from operator-maintained
// allowlist files and produces the proofs claimants submit.
//
// An allowlist file is a JSONC array:
//
//	[
//	  // founders
//	  {"address": "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", "entitlement": 10},
//	  {"address": "0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2", "entitlement": 2},
//	]
package allowlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/fairmint/lib/commitment"
)

// ErrNotListed is returned by Proof for an address that is not on the
// allowlist.
var ErrNotListed = errors.New("allowlist: address not listed")

// Entry is one allowlisted identity.
type Entry struct {
	Address     common.Address `json:"address"`
	Entitlement uint64         `json:"entitlement"`
}

// List is a validated allowlist with its commitment tree.
type List struct {
	entries []Entry
	index   map[common.Address]int
	tree    *commitment.Tree
}

// Parse decodes a JSONC allowlist.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return nil, fmt.Errorf("allowlist: parsing: %w", err)
	}
	return entries, nil
}

// LoadFile reads and parses the allowlist at path.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("allowlist: reading %s: %w", path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Build validates entries and builds their commitment tree. Every
// problem found is reported, joined into one error: zero addresses,
// zero entitlements, and addresses listed more than once.
func Build(hasher commitment.Hasher, entries []Entry) (*List, error) {
	var problems []error
	index := make(map[common.Address]int, len(entries))
	for i, entry := range entries {
		if entry.Address == (common.Address{}) {
			problems = append(problems, fmt.Errorf("entry %d: zero address", i))
		}
		if entry.Entitlement == 0 {
			problems = append(problems, fmt.Errorf("entry %d (%s): zero entitlement", i, entry.Address.Hex()))
		}
		if previous, duplicate := index[entry.Address]; duplicate {
			problems = append(problems, fmt.Errorf("entry %d (%s): already listed at entry %d", i, entry.Address.Hex(), previous))
			continue
		}
		index[entry.Address] = i
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("allowlist: %w", errors.Join(problems...))
	}

	leaves := make([]common.Hash, len(entries))
	for i, entry := range entries {
		leaves[i] = commitment.Leaf(hasher, entry.Address, entry.Entitlement)
	}
	tree, err := commitment.NewTree(hasher, leaves)
	if err != nil {
		return nil, fmt.Errorf("allowlist: %w", err)
	}

	return &List{
		entries: slices.Clone(entries),
		index:   index,
		tree:    tree,
	}, nil
}

// Root returns the commitment root to configure on the engine.
func (l *List) Root() common.Hash { return l.tree.Root() }

// Len returns the number of entries.
func (l *List) Len() int { return len(l.entries) }

// Total returns the sum of all entitlements.
func (l *List) Total() uint64 {
	var total uint64
	for _, entry := range l.entries {
		total += entry.Entitlement
	}
	return total
}

// Entry returns the entry for address.
func (l *List) Entry(address common.Address) (Entry, bool) {
	i, ok := l.index[address]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Proof is everything a claimant needs to claim an entry.
type Proof struct {
	Address     common.Address  `json:"address"`
	Entitlement uint64          `json:"entitlement"`
	Leaf        common.Hash     `json:"leaf"`
	Proof       []hexutil.Bytes `json:"proof"`
}

// Nodes returns the proof path in the form mint.ClaimRequest takes.
func (p Proof) Nodes() [][]byte {
	nodes := make([][]byte, len(p.Proof))
	for i, node := range p.Proof {
		nodes[i] = node
	}
	return nodes
}

// Proof returns the proof for address.
func (l *List) Proof(address common.Address) (Proof, error) {
	entry, ok := l.Entry(address)
	if !ok {
		return Proof{}, fmt.Errorf("%w: %s", ErrNotListed, address.Hex())
	}
	leaf := commitment.Leaf(l.tree.Hasher(), entry.Address, entry.Entitlement)
	path, ok := l.tree.Proof(leaf)
	if !ok {
		// Build put every entry's leaf in the tree.
		panic("allowlist: listed entry missing from tree")
	}
	proof := Proof{
		Address:     entry.Address,
		Entitlement: entry.Entitlement,
		Leaf:        leaf,
		Proof:       make([]hexutil.Bytes, len(path)),
	}
	for i, node := range path {
		proof.Proof[i] = node.Bytes()
	}
	return proof, nil
}

// Export is the published form of an allowlist: the root plus every
// entry's proof, sorted by address.
type Export struct {
	Root   common.Hash `json:"root"`
	Hash   string      `json:"hash"`
	Total  uint64      `json:"total"`
	Proofs []Proof     `json:"proofs"`
}

// Export returns proofs for every entry.
func (l *List) Export() Export {
	export := Export{
		Root:   l.Root(),
		Hash:   l.tree.Hasher().Name(),
		Total:  l.Total(),
		Proofs: make([]Proof, 0, len(l.entries)),
	}
	for _, entry := range l.entries {
		proof, err := l.Proof(entry.Address)
		if err != nil {
			panic(err)
		}
		export.Proofs = append(export.Proofs, proof)
	}
	slices.SortFunc(export.Proofs, func(a, b Proof) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return export
}
