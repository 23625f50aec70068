// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"strconv"
	"time"
)

// DefaultExtension is appended to revealed locators when the engine
// configuration does not name one.
const DefaultExtension = ".json"

type revealPhase uint8

const (
	phaseSealed revealPhase = iota
	phaseRevealed
)

// revealState is the metadata state machine. phase is the only source
// of truth for "revealed" and "base locator locked"; offset and
// revealedAt are meaningful only in phaseRevealed.
type revealState struct {
	phase       revealPhase
	placeholder string
	base        string
	offset      uint64
	revealedAt  time.Time
}

func (r *revealState) revealed() bool { return r.phase == phaseRevealed }

// locator maps id to its metadata locator. The caller has checked
// id < maxSupply.
func (r *revealState) locator(id, maxSupply uint64, extension string) string {
	if r.phase != phaseRevealed {
		return r.placeholder
	}
	return r.base + strconv.FormatUint(metadataIndex(id, r.offset, maxSupply), 10) + extension
}

// metadataIndex is (id + offset) mod maxSupply without overflowing
// for ids and offsets near the top of the uint64 range. Both inputs
// are below maxSupply.
func metadataIndex(id, offset, maxSupply uint64) uint64 {
	if offset >= maxSupply-id {
		return offset - (maxSupply - id)
	}
	return id + offset
}

func (r *revealState) snapshot() RevealSnapshot {
	out := RevealSnapshot{
		PlaceholderLocator: r.placeholder,
		BaseLocator:        r.base,
		Revealed:           r.revealed(),
	}
	if r.revealed() {
		out.Offset = r.offset
		out.RevealedAt = r.revealedAt.Unix()
	}
	return out
}

func revealStateFrom(snapshot RevealSnapshot) revealState {
	state := revealState{
		placeholder: snapshot.PlaceholderLocator,
		base:        snapshot.BaseLocator,
	}
	if snapshot.Revealed {
		state.phase = phaseRevealed
		state.offset = snapshot.Offset
		state.revealedAt = time.Unix(snapshot.RevealedAt, 0).UTC()
	}
	return state
}
