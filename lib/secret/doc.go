// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data such as
// signing keys.
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped.
//
// Because the memory is allocated outside the Go heap, the garbage
// collector never sees it and cannot copy or relocate it. [ReadHex]
// decodes a hex key file straight into a Buffer, so the decoded key is
// never held by a heap slice the collector might leave behind.
//
// Some standard library code cannot operate on Buffer memory directly.
// crypto/ed25519 caches derived key state through a weak pointer to the
// private key, and weak pointers only accept heap memory. Callers that
// sign with a Buffer-held key (lib/admintoken.MintWithKey) rebuild the
// key in a short-lived heap slice and clear it with [Zero] afterwards.
//
// The fairmint CLI loads the admin private key this way for the few
// milliseconds it takes to sign a token.
package secret
