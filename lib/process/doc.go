// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for fairmint binaries.
//
// [Fatal] reports an error from run() on stderr and exits. It is used
// where the structured logger may not exist yet, such as a config
// that failed to load.
package process
