// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit without an extra error message:
// the command has already written its own output. "fairmint allowlist
// proof" returns one for an address that is not listed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. process.Fatal checks for this
// method to skip printing.
func (e *ExitError) ExitCode() int {
	return e.Code
}
