// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"context"
	"slices"
	"sync"
)

// Store persists engine state. The engine calls Commit once per state
// transition while holding its lock, so implementations see commits
// strictly in order and never concurrently. A Commit error aborts the
// transition: the engine restores its in-memory state and returns the
// error to the caller.
type Store interface {
	// Load returns the persisted snapshot, or (nil, nil) when the
	// store is empty.
	Load(ctx context.Context) (*Snapshot, error)

	// Commit durably records change. snapshot returns the complete
	// post-transition state; row-oriented stores can ignore it and
	// apply change alone.
	Commit(ctx context.Context, change Change, snapshot func() *Snapshot) error
}

// MemoryStore keeps the latest snapshot in memory. It is the default
// when no store is configured and is useful in tests that restart an
// engine against the same state.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *Snapshot
	commits  int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, nil
	}
	return s.snapshot.Clone(), nil
}

// Commit implements Store.
func (s *MemoryStore) Commit(_ context.Context, _ Change, snapshot func() *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot()
	s.commits++
	return nil
}

// Commits returns the number of successful commits.
func (s *MemoryStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Claims = slices.Clone(s.Claims)
	clone.Allocations = slices.Clone(s.Allocations)
	return &clone
}
