// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mint

import (
	"context"
	"errors"
	"math"
	"math/big"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bureau-foundation/fairmint/lib/randomness"
)

func TestLocatorBeforeReveal(t *testing.T) {
	engine := newTestEngine(t, nil, Config{MaxSupply: 50})

	for id := uint64(0); id < 50; id++ {
		got, err := engine.Locator(id)
		if err != nil {
			t.Fatalf("Locator(%d): %v", id, err)
		}
		if got != "ipfs://placeholder" {
			t.Fatalf("Locator(%d) = %q, want placeholder", id, got)
		}
	}
	if _, err := engine.Locator(50); !errors.Is(err, ErrUnitOutOfRange) {
		t.Errorf("Locator(50) error = %v, want ErrUnitOutOfRange", err)
	}
}

func TestRevealOffsetWraps(t *testing.T) {
	// 499 mod 400 = 99.
	engine := newTestEngine(t, nil, Config{
		MaxSupply:  400,
		Randomness: randomness.Fixed{Value: big.NewInt(499)},
	})

	offset, err := engine.Reveal(context.Background(), owner)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if offset != 99 {
		t.Fatalf("offset = %d, want 99", offset)
	}

	tests := []struct {
		id   uint64
		want string
	}{
		{0, "ipfs://base/99.json"},
		{1, "ipfs://base/100.json"},
		{300, "ipfs://base/399.json"},
		{301, "ipfs://base/0.json"},
		{350, "ipfs://base/49.json"},
		{399, "ipfs://base/98.json"},
	}
	for _, test := range tests {
		got, err := engine.Locator(test.id)
		if err != nil {
			t.Fatalf("Locator(%d): %v", test.id, err)
		}
		if got != test.want {
			t.Errorf("Locator(%d) = %q, want %q", test.id, got, test.want)
		}
	}
}

func TestRevealedLocatorIsBijection(t *testing.T) {
	for _, value := range []int64{0, 1, 99, 1 << 40} {
		engine := newTestEngine(t, nil, Config{
			MaxSupply:  257,
			Randomness: randomness.Fixed{Value: big.NewInt(value)},
		})
		if _, err := engine.Reveal(context.Background(), owner); err != nil {
			t.Fatalf("Reveal: %v", err)
		}
		seen := make(map[string]uint64)
		for id := uint64(0); id < 257; id++ {
			locator, err := engine.Locator(id)
			if err != nil {
				t.Fatalf("Locator(%d): %v", id, err)
			}
			if previous, duplicate := seen[locator]; duplicate {
				t.Fatalf("random %d: ids %d and %d both map to %q", value, previous, id, locator)
			}
			seen[locator] = id
		}
	}
}

func TestRevealLargeRandomValue(t *testing.T) {
	value, _ := new(big.Int).SetString("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0)
	engine := newTestEngine(t, nil, Config{
		MaxSupply:  400,
		Randomness: randomness.Fixed{Value: value},
	})
	offset, err := engine.Reveal(context.Background(), owner)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	want := new(big.Int).Mod(value, big.NewInt(400)).Uint64()
	if offset != want {
		t.Errorf("offset = %d, want %d", offset, want)
	}
}

func TestRevealTwice(t *testing.T) {
	engine := newTestEngine(t, nil, Config{Randomness: randomness.Fixed{Value: big.NewInt(3)}})
	ctx := context.Background()

	if _, err := engine.Reveal(ctx, owner); err != nil {
		t.Fatalf("first Reveal: %v", err)
	}
	if _, err := engine.Reveal(ctx, owner); !errors.Is(err, ErrAlreadyRevealed) {
		t.Errorf("second Reveal error = %v, want ErrAlreadyRevealed", err)
	}
	if got := engine.Status().Offset; got != 3 {
		t.Errorf("offset after second reveal = %d, want 3", got)
	}
}

func TestRevealNotAuthorized(t *testing.T) {
	engine := newTestEngine(t, nil, Config{Randomness: randomness.Fixed{Value: big.NewInt(3)}})
	if _, err := engine.Reveal(context.Background(), stranger); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("Reveal error = %v, want ErrNotAuthorized", err)
	}
	if engine.Revealed() {
		t.Error("collection revealed by a non-owner")
	}
}

func TestRevealRandomnessFailure(t *testing.T) {
	tests := []struct {
		name   string
		source randomness.Source
	}{
		{"source error", failingRandomness{}},
		{"no source", nil},
		{"nil value", randomness.Fixed{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			engine := newTestEngine(t, nil, Config{Randomness: test.source})
			_, err := engine.Reveal(context.Background(), owner)
			if !errors.Is(err, ErrRandomnessUnavailable) {
				t.Fatalf("Reveal error = %v, want ErrRandomnessUnavailable", err)
			}
			if engine.Revealed() {
				t.Error("collection revealed despite randomness failure")
			}
			// The base locator is still editable.
			if err := engine.SetBaseLocator(context.Background(), owner, "ar://retry/"); err != nil {
				t.Errorf("SetBaseLocator after failed reveal: %v", err)
			}
		})
	}
}

func TestRevealRollsBackOnStoreFailure(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore()}
	engine := newTestEngine(t, nil, Config{Store: store, Randomness: randomness.Fixed{Value: big.NewInt(5)}})
	ctx := context.Background()

	store.fail.Store(true)
	if _, err := engine.Reveal(ctx, owner); err == nil {
		t.Fatal("Reveal succeeded with failing store")
	}
	if engine.Revealed() {
		t.Fatal("collection revealed after failed commit")
	}
	got, _ := engine.Locator(0)
	if got != "ipfs://placeholder" {
		t.Errorf("Locator(0) = %q, want placeholder", got)
	}

	store.fail.Store(false)
	if _, err := engine.Reveal(ctx, owner); err != nil {
		t.Fatalf("retry Reveal: %v", err)
	}
}

func TestBaseLocatorLockedAfterReveal(t *testing.T) {
	engine := newTestEngine(t, nil, Config{Randomness: randomness.Fixed{Value: big.NewInt(0)}})
	ctx := context.Background()

	if err := engine.SetBaseLocator(ctx, stranger, "ar://evil/"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger SetBaseLocator error = %v, want ErrNotAuthorized", err)
	}
	if err := engine.SetBaseLocator(ctx, owner, "ar://final/"); err != nil {
		t.Fatalf("SetBaseLocator: %v", err)
	}
	if _, err := engine.Reveal(ctx, owner); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if err := engine.SetBaseLocator(ctx, owner, "ar://rug/"); !errors.Is(err, ErrRevealedMetadataLocked) {
		t.Fatalf("SetBaseLocator after reveal error = %v, want ErrRevealedMetadataLocked", err)
	}
	got, _ := engine.Locator(12)
	if got != "ar://final/12.json" {
		t.Errorf("Locator(12) = %q, want ar://final/12.json", got)
	}

	// The placeholder stays editable but is no longer served.
	if err := engine.SetPlaceholderLocator(ctx, owner, "ipfs://new-placeholder"); err != nil {
		t.Fatalf("SetPlaceholderLocator after reveal: %v", err)
	}
	got, _ = engine.Locator(12)
	if got != "ar://final/12.json" {
		t.Errorf("Locator(12) after placeholder change = %q", got)
	}
}

func TestSetPlaceholderLocator(t *testing.T) {
	engine := newTestEngine(t, nil, Config{})
	ctx := context.Background()

	if err := engine.SetPlaceholderLocator(ctx, stranger, "x"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger error = %v, want ErrNotAuthorized", err)
	}
	if err := engine.SetPlaceholderLocator(ctx, owner, "ipfs://hidden.json"); err != nil {
		t.Fatalf("SetPlaceholderLocator: %v", err)
	}
	got, _ := engine.Locator(3)
	if got != "ipfs://hidden.json" {
		t.Errorf("Locator(3) = %q, want ipfs://hidden.json", got)
	}
}

func TestCustomExtension(t *testing.T) {
	engine := newTestEngine(t, nil, Config{
		MaxSupply:  10,
		Extension:  ".meta",
		Randomness: randomness.Fixed{Value: big.NewInt(2)},
	})
	if _, err := engine.Reveal(context.Background(), owner); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	got, _ := engine.Locator(9)
	if got != "ipfs://base/1.meta" {
		t.Errorf("Locator(9) = %q, want ipfs://base/1.meta", got)
	}
}

func TestNilAuthorizerRejectsAdmin(t *testing.T) {
	engine, err := NewEngine(context.Background(), Config{MaxSupply: 10})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.SetCommitmentRoot(context.Background(), owner, common.Hash{1}); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("error = %v, want ErrNotAuthorized", err)
	}
}

func TestMetadataIndexNearLimit(t *testing.T) {
	const maxSupply = math.MaxUint64
	tests := []struct {
		id, offset, want uint64
	}{
		{0, 0, 0},
		{maxSupply - 1, 0, maxSupply - 1},
		{maxSupply - 1, 1, 0},
		{maxSupply - 1, maxSupply - 1, maxSupply - 2},
		{5, maxSupply - 3, 2},
	}
	for _, test := range tests {
		got := metadataIndex(test.id, test.offset, maxSupply)
		if got != test.want {
			t.Errorf("metadataIndex(%d, %d) = %s, want %s", test.id, test.offset,
				strconv.FormatUint(got, 10), strconv.FormatUint(test.want, 10))
		}
	}
}
