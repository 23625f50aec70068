// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for fairmint.
//
// Configuration comes from a single file named by either the
// FAIRMINT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic discovery.
//
// The file may carry environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production is stricter: Validate
// rejects the in-memory store and fixed randomness there.
//
// After loading, ${FAIRMINT_ROOT}, ${HOME} and ${VAR:-default}
// patterns are expanded in path fields.
//
// Key exports:
//
//   - [Config] -- master struct: Collection, Admin, Paths, Store,
//     Delegations, Randomness, Log
//   - [Default] -- development defaults
//   - [Load] and [LoadFile] -- the two entry points
package config
