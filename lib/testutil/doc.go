// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for fairmint packages.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets. Socket paths are limited to 108 bytes (sun_path in
// sockaddr_un) and t.TempDir() can exceed that under some test
// runners.
//
// [RequireReceive] and [RequireClosed] bound channel waits so a hung
// server fails the test instead of the whole run.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
