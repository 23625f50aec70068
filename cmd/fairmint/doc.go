// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Fairmint is the command-line client for fair-launch collections.
//
// Offline commands build allowlist commitments and admin credentials:
//
//	fairmint allowlist root --file allowlist.jsonc
//	fairmint allowlist export --file allowlist.jsonc > proofs.json
//	fairmint admin keygen --out admin.key
//	fairmint admin token --key admin.key --subject 0x... --out admin.token
//
// Online commands talk to a running fairmint-service over its socket,
// named by --socket or by paths.socket in the config file:
//
//	fairmint status
//	fairmint claim --allowlist allowlist.jsonc --key wallet.key --amount 2
//	fairmint admin reveal --token admin.token
package main
