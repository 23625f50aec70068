// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mintapi defines the request and response bodies exchanged
// over the fairmint service socket. The service decodes requests into
// these types and the CLI decodes responses from them, so both sides
// share one definition of every field name.
//
// The "action" and "token" fields are handled by package service and
// do not appear here. Every type carries json tags only: the CLI prints
// them with --json, and the CBOR codec reads the same tags for the
// wire.
package mintapi
