// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// issuer hands out unit ids sequentially from 0 and remembers who
// received each range. It makes no admission decisions.
type issuer struct {
	next        uint64
	allocations []Allocation
}

// issue allocates [next, next+count) to owner. A zero count allocates
// nothing and returns an empty allocation starting at next.
func (i *issuer) issue(owner common.Address, count uint64) Allocation {
	allocation := Allocation{First: i.next, Count: count, Owner: owner}
	if count == 0 {
		return allocation
	}
	i.allocations = append(i.allocations, allocation)
	i.next += count
	return allocation
}

// rollback removes the most recent allocation, which must be the one
// passed in.
func (i *issuer) rollback(allocation Allocation) {
	if allocation.Count == 0 {
		return
	}
	last := len(i.allocations) - 1
	if last < 0 || i.allocations[last] != allocation {
		panic("mint: issuer rollback of an allocation that is not the latest")
	}
	i.allocations = i.allocations[:last]
	i.next = allocation.First
}

// ownerOf returns the owner of id, or false when id has not been
// issued.
func (i *issuer) ownerOf(id uint64) (common.Address, bool) {
	if id >= i.next {
		return common.Address{}, false
	}
	index := sort.Search(len(i.allocations), func(n int) bool {
		return i.allocations[n].End() > id
	})
	return i.allocations[index].Owner, true
}

// balanceOf counts the units issued to owner.
func (i *issuer) balanceOf(owner common.Address) uint64 {
	var total uint64
	for _, allocation := range i.allocations {
		if allocation.Owner == owner {
			total += allocation.Count
		}
	}
	return total
}
