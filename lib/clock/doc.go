// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// The engine stamps reveals and snapshot updates, and the service
// checks admin token expiry. All of them read time through a Clock so
// tests can pin it:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	engine, _ := mint.NewEngine(mint.Config{Clock: c, ...})
//	c.Advance(time.Hour)
package clock
