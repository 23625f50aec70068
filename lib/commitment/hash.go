// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commitment

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// HashSize is the size in bytes of every leaf, node, and root.
const HashSize = common.HashLength

// Hasher is the digest function used for both leaves and interior
// nodes of a commitment tree.
type Hasher interface {
	// Name is the configuration name of the hash ("keccak256",
	// "blake3").
	Name() string

	// Sum returns the digest of data.
	Sum(data []byte) common.Hash
}

// Keccak256 is the legacy (pre-NIST) Keccak-256 used by the EVM.
var Keccak256 Hasher = keccakHasher{}

// BLAKE3 is keyed BLAKE3 under the commitment domain key.
var BLAKE3 Hasher = blake3Hasher{}

// ParseHasher returns the Hasher registered under name. The empty
// string selects Keccak256.
func ParseHasher(name string) (Hasher, error) {
	switch name {
	case "", "keccak256":
		return Keccak256, nil
	case "blake3":
		return BLAKE3, nil
	default:
		return nil, fmt.Errorf("unknown commitment hash %q (want keccak256 or blake3)", name)
	}
}

type keccakHasher struct{}

func (keccakHasher) Name() string { return "keccak256" }

func (keccakHasher) Sum(data []byte) common.Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	var hash common.Hash
	hasher.Sum(hash[:0])
	return hash
}

// commitmentDomainKey is the ASCII domain name zero-padded to 32
// bytes. Changing it changes every BLAKE3 root.
var commitmentDomainKey = [32]byte{
	'f', 'a', 'i', 'r', 'm', 'i', 'n', 't', '.', 'c', 'o', 'm', 'm', 'i', 't', 'm',
	'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

type blake3Hasher struct{}

func (blake3Hasher) Name() string { return "blake3" }

func (blake3Hasher) Sum(data []byte) common.Hash {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(commitmentDomainKey[:])
	if err != nil {
		panic("commitment: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash common.Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
