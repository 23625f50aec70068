// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides fairmint's standard CBOR encoding configuration.
//
// Fairmint uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: allowlist files (JSONC), proof
//     exports consumed by claim front ends, and CLI --json output.
//   - CBOR for internal protocols: service socket communication,
//     on-disk state snapshots (lib/statefile), and signed admin tokens
//     (lib/admintoken).
//
// This package provides the shared CBOR encoding and decoding modes so
// that every fairmint package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which admin token signatures depend on: a token is verified
// against the exact payload bytes it was minted from.
//
// Addresses and digests (go-ethereum common.Address and common.Hash)
// implement encoding.TextMarshaler, so they travel as 0x-prefixed hex
// text and stay readable in any CBOR diagnostic dump.
//
// For buffer-oriented operations (snapshots, tokens):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never be marshaled to JSON or interact with CLI tooling.
//     Examples: admin token payloads and the socket request and
//     response envelopes.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: the lib/mintapi
//     request and response bodies, which the CLI prints with --json,
//     and the engine's Status and Snapshot types.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract; doubling up obscures whether a type
// participates in JSON serialization.
package codec
