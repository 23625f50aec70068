// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delegation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/jsonc"
)

// Link records that Cold delegates to Hot.
type Link struct {
	Cold common.Address `json:"cold"`
	Hot  common.Address `json:"hot"`
}

// StaticRegistry is an in-process Registry built from a list of links.
// It stands in for an on-chain registry in tests, rehearsals, and
// deployments that snapshot delegations ahead of the claim window.
//
// StaticRegistry is safe for concurrent use.
type StaticRegistry struct {
	mu    sync.RWMutex
	byHot map[common.Address][]common.Address
}

// NewStaticRegistry builds a registry from links. For each hot
// account, cold accounts keep the order in which their links appear.
func NewStaticRegistry(links []Link) *StaticRegistry {
	registry := &StaticRegistry{byHot: make(map[common.Address][]common.Address)}
	for _, link := range links {
		registry.add(link)
	}
	return registry
}

// Delegate records a new link. Recording the same link twice has no
// effect.
func (r *StaticRegistry) Delegate(cold, hot common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(Link{Cold: cold, Hot: hot})
}

func (r *StaticRegistry) add(link Link) {
	existing := r.byHot[link.Hot]
	if slices.Contains(existing, link.Cold) {
		return
	}
	r.byHot[link.Hot] = append(existing, link.Cold)
}

// ColdAddressesOf implements Registry. The returned slice is a copy.
func (r *StaticRegistry) ColdAddressesOf(_ context.Context, hot common.Address) ([]common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byHot[hot]), nil
}

// LoadFile reads a JSONC file holding an array of links:
//
//	[
//	  // cold wallet 1 delegates to the hot wallet
//	  {"cold": "0x...", "hot": "0x..."},
//	]
//
// Comments and trailing commas are allowed.
func LoadFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading delegation file: %w", err)
	}
	var links []Link
	if err := json.Unmarshal(jsonc.ToJSON(data), &links); err != nil {
		return nil, fmt.Errorf("parsing delegation file %s: %w", path, err)
	}
	for i, link := range links {
		if link.Cold == (common.Address{}) || link.Hot == (common.Address{}) {
			return nil, fmt.Errorf("delegation file %s: link %d has a zero address", path, i)
		}
	}
	return NewStaticRegistry(links), nil
}
