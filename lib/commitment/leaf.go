// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commitment

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// leafSeparator sits between the address and the entitlement in the
// packed leaf encoding.
const leafSeparator = '_'

// packedLeafSize is address (20) + separator (1) + uint256 (32).
const packedLeafSize = common.AddressLength + 1 + 32

// PackLeaf returns the packed encoding of an (address, entitlement)
// pair. The entitlement is written as a big-endian uint256; values
// fit in the low 8 bytes.
func PackLeaf(address common.Address, entitlement uint64) []byte {
	packed := make([]byte, packedLeafSize)
	copy(packed, address[:])
	packed[common.AddressLength] = leafSeparator
	binary.BigEndian.PutUint64(packed[packedLeafSize-8:], entitlement)
	return packed
}

// Leaf returns the leaf hash committing to address and entitlement.
func Leaf(hasher Hasher, address common.Address, entitlement uint64) common.Hash {
	return hasher.Sum(PackLeaf(address, entitlement))
}
