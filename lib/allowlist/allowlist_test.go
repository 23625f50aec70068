// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bureau-foundation/fairmint/lib/commitment"
)

const sampleFile = `[
  // founders
  {"address": "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", "entitlement": 10},
  {"address": "0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2", "entitlement": 2},
  /* community */
  {"address": "0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db", "entitlement": 50},
]`

var (
	first  = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	second = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
	third  = common.HexToAddress("0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db")
)

func buildSample(t *testing.T, hasher commitment.Hasher) *List {
	t.Helper()
	entries, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	list, err := Build(hasher, entries)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return list
}

func TestParseJSONC(t *testing.T) {
	entries, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[2].Address != third || entries[2].Entitlement != 50 {
		t.Errorf("entry 2 = %+v", entries[2])
	}
}

func TestEveryProofVerifies(t *testing.T) {
	for _, hasher := range []commitment.Hasher{commitment.Keccak256, commitment.BLAKE3} {
		t.Run(hasher.Name(), func(t *testing.T) {
			list := buildSample(t, hasher)
			for _, address := range []common.Address{first, second, third} {
				proof, err := list.Proof(address)
				if err != nil {
					t.Fatalf("Proof(%s): %v", address.Hex(), err)
				}
				leaf := commitment.Leaf(hasher, address, proof.Entitlement)
				if leaf != proof.Leaf {
					t.Errorf("proof leaf = %s, want %s", proof.Leaf.Hex(), leaf.Hex())
				}
				if !commitment.Verify(hasher, proof.Nodes(), list.Root(), leaf) {
					t.Errorf("proof for %s does not verify", address.Hex())
				}
			}
		})
	}
}

func TestProofNotListed(t *testing.T) {
	list := buildSample(t, commitment.Keccak256)
	_, err := list.Proof(common.HexToAddress("0xdead"))
	if !errors.Is(err, ErrNotListed) {
		t.Errorf("error = %v, want ErrNotListed", err)
	}
}

func TestBuildRejectsInvalidEntries(t *testing.T) {
	entries := []Entry{
		{Address: first, Entitlement: 1},
		{Address: common.Address{}, Entitlement: 1},
		{Address: second, Entitlement: 0},
		{Address: first, Entitlement: 4},
	}
	_, err := Build(commitment.Keccak256, entries)
	if err == nil {
		t.Fatal("Build accepted invalid entries")
	}
	for _, want := range []string{"zero address", "zero entitlement", "already listed at entry 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	if _, err := Build(commitment.Keccak256, nil); !errors.Is(err, commitment.ErrEmptyTree) {
		t.Errorf("empty Build error = %v, want ErrEmptyTree", err)
	}
}

func TestExport(t *testing.T) {
	list := buildSample(t, commitment.Keccak256)
	export := list.Export()
	if export.Root != list.Root() || export.Total != 62 || export.Hash != "keccak256" {
		t.Errorf("export header = %+v", export)
	}
	if len(export.Proofs) != 3 {
		t.Fatalf("got %d proofs, want 3", len(export.Proofs))
	}
	// Sorted by address bytes: 0x4B.., 0x5B.., 0xAb..
	want := []common.Address{third, first, second}
	for i, proof := range export.Proofs {
		if proof.Address != want[i] {
			t.Errorf("proof %d address = %s, want %s", i, proof.Address.Hex(), want[i].Hex())
		}
	}

	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Export
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	proof := decoded.Proofs[0]
	if !commitment.Verify(commitment.Keccak256, proof.Nodes(), decoded.Root, proof.Leaf) {
		t.Error("proof decoded from JSON does not verify")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.jsonc")
	if err := os.WriteFile(path, []byte(sampleFile), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadFile succeeded on a missing file")
	}
}
