// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
)

// ReadHex reads a hex-encoded key of size bytes from path into a new
// Buffer. Surrounding whitespace is ignored. The file contents are
// zeroed after decoding.
func ReadHex(path string, size int) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer Zero(data)

	encoded := bytes.TrimSpace(data)
	if len(encoded) != hex.EncodedLen(size) {
		return nil, fmt.Errorf("secret: %s holds %d hex characters, want %d", path, len(encoded), hex.EncodedLen(size))
	}
	buffer, err := New(size)
	if err != nil {
		return nil, err
	}
	if _, err := hex.Decode(buffer.Bytes(), encoded); err != nil {
		buffer.Close()
		return nil, fmt.Errorf("secret: %s is not hex: %w", path, err)
	}
	return buffer, nil
}
