// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	saved := [...]string{Version, GitCommit, GitDirty, BuildTime}
	t.Cleanup(func() {
		Version, GitCommit, GitDirty, BuildTime = saved[0], saved[1], saved[2], saved[3]
	})

	Version, GitCommit, GitDirty, BuildTime = "1.2.0", "abc1234", "true", "2026-03-01T09:00:00Z"
	if got, want := Info(), "1.2.0 (abc1234-dirty, 2026-03-01T09:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "false"
	if got := Full(); !strings.HasPrefix(got, "1.2.0 (abc1234, ") || !strings.Contains(got, "Platform: ") {
		t.Errorf("Full() = %q", got)
	}
}

func TestInfoWithoutLinkerFlags(t *testing.T) {
	saved := GitCommit
	t.Cleanup(func() { GitCommit = saved })
	GitCommit = "unknown"

	// Test binaries carry no VCS stamp, so the defaults stand.
	if got := Info(); !strings.HasPrefix(got, Version+" (") {
		t.Errorf("Info() = %q", got)
	}
}
