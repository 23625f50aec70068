// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package statefile is a mint.Store that keeps the whole engine state
// in one file, rewritten atomically on every commit.
//
// File layout:
//
//	offset  size  field
//	0       4     magic "FMST"
//	4       1     format version (1)
//	5       1     compression tag (0 none, 1 lz4, 2 zstd)
//	6       4     uncompressed payload length, big-endian
//	10      ...   payload: CBOR-encoded mint.Snapshot
//
// The writer falls back to no compression when the configured
// algorithm does not shrink the payload, so readers must honor the tag
// rather than the configuration.
package statefile
