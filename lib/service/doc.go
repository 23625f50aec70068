// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the Unix socket transport for the fairmint
// service.
//
// The protocol is one CBOR request and one CBOR response per
// connection. Every request is a map carrying an "action" field; the
// server routes on it and hands the full raw request to the registered
// handler, which decodes its own fields. Responses use the [Response]
// envelope: {ok, error, data}.
//
// # Authentication
//
// Read-only and claim actions are registered with [SocketServer.Handle]
// and need no credentials: claim authorization comes from the Merkle
// proof, not from the transport. Administrative actions are registered
// with [SocketServer.HandleAuth] and require a "token" field holding an
// Ed25519-signed admin token (see package admintoken). The server
// verifies the signature, expiry, audience, and revocation list before
// the handler runs, and passes the decoded token so the handler can
// act on behalf of the token's subject address.
//
// [ServiceClient] is the matching client. It opens a connection per
// call and injects "action" and, when configured, "token".
package service
