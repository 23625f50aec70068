// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package admintoken

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/bureau-foundation/fairmint/lib/secret"
)

// GenerateKeypair creates a new Ed25519 signing keypair.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("admintoken: generating keypair: %w", err)
	}
	return public, private, nil
}

// SaveKeypair writes the keys hex-encoded: the private key to
// privatePath (mode 0600) and the public key to privatePath + ".pub"
// (mode 0644). It returns the public key path.
func SaveKeypair(privatePath string, public ed25519.PublicKey, private ed25519.PrivateKey) (string, error) {
	if err := os.WriteFile(privatePath, []byte(hex.EncodeToString(private)+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("admintoken: writing private key: %w", err)
	}
	publicPath := privatePath + ".pub"
	if err := os.WriteFile(publicPath, []byte(hex.EncodeToString(public)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("admintoken: writing public key: %w", err)
	}
	return publicPath, nil
}

// LoadPrivateKey reads a key written by SaveKeypair into locked
// memory. The caller must Close the buffer. Sign with [MintWithKey].
func LoadPrivateKey(path string) (*secret.Buffer, error) {
	key, err := secret.ReadHex(path, ed25519.PrivateKeySize)
	if err != nil {
		return nil, fmt.Errorf("admintoken: reading private key: %w", err)
	}
	return key, nil
}

// MintWithKey signs token with a private key held in a secret.Buffer.
//
// crypto/ed25519 caches the expanded key through a weak pointer to the
// key slice, and weak pointers into mmap'd memory abort the runtime.
// The key is therefore rebuilt on the heap from its seed for the one
// signature and zeroed afterwards. The public half stored in the file
// must match the seed.
func MintWithKey(key *secret.Buffer, token *Token) ([]byte, error) {
	stored := key.Bytes()
	if len(stored) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("admintoken: private key has %d bytes, want %d", len(stored), ed25519.PrivateKeySize)
	}
	seed := make([]byte, ed25519.SeedSize)
	copy(seed, stored[:ed25519.SeedSize])
	private := ed25519.NewKeyFromSeed(seed)
	defer secret.Zero(seed)
	defer secret.Zero(private)

	if !bytes.Equal(private[ed25519.SeedSize:], stored[ed25519.SeedSize:]) {
		return nil, ErrKeyMismatch
	}
	return Mint(private, token)
}

// LoadPublicKey reads a key written by SaveKeypair.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	key, err := readHexKey(path, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(key), nil
}

func readHexKey(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("admintoken: reading key: %w", err)
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("admintoken: key %s is not hex: %w", path, err)
	}
	if len(key) != size {
		return nil, fmt.Errorf("admintoken: key %s has %d bytes, want %d", path, len(key), size)
	}
	return key, nil
}
