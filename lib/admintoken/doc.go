// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package admintoken mints and verifies the signed tokens that carry
// admin identity to the fairmint service.
//
// A token is a CBOR payload followed by a 64-byte Ed25519 signature:
//
//	[ CBOR(Token) ][ signature(CBOR(Token)) ]
//
// The service holds only the public key. The token's Subject is the
// address handed to the engine's owner check, so holding a valid token
// is necessary but not sufficient: the subject must also be the
// collection owner.
package admintoken
