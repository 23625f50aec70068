// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Fairmint-service runs one collection's claim ledger behind a Unix
// socket.
//
// On startup it loads the YAML config, opens the configured store
// (memory, sqlite, or a compressed state file), restores the engine
// from it or seeds it from the config, and serves the CBOR socket
// protocol from package service. Public actions (status, claim,
// locator, owner-of, balance, claimed) need no credentials. Admin
// actions (reveal, set-base-locator, set-placeholder-locator,
// set-root, set-pass-address) need an admin token signed by the key
// at admin.public_key_file; without that key they are not served.
//
// SIGINT and SIGTERM stop accepting connections and let in-flight
// requests finish.
package main
