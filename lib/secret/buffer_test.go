// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	buffer, err := New(64)
	if err != nil {
		t.Fatalf("New(64): %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 64 {
		t.Errorf("Len = %d, want 64", buffer.Len())
	}
	for index, value := range buffer.Bytes() {
		if value != 0 {
			t.Fatalf("byte %d = %d, want zero", index, value)
		}
	}
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) succeeded", size)
		}
	}
}

func TestNewFromBytesZeroesSource(t *testing.T) {
	source := []byte("signing key")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "signing key" {
		t.Errorf("buffer = %q", got)
	}
	if !bytes.Equal(source, make([]byte, len(source))) {
		t.Errorf("source not zeroed: %q", source)
	}
	if _, err := NewFromBytes(nil); err == nil {
		t.Error("NewFromBytes(nil) succeeded")
	}
}

func TestCloseIsIdempotentAndPanicsOnRead(t *testing.T) {
	buffer, err := NewFromBytes([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Bytes after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadHex(t *testing.T) {
	directory := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(directory, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	buffer, err := ReadHex(write("good", "  00ff10ab\n"), 4)
	if err != nil {
		t.Fatalf("ReadHex: %v", err)
	}
	defer buffer.Close()
	if !bytes.Equal(buffer.Bytes(), []byte{0x00, 0xff, 0x10, 0xab}) {
		t.Errorf("decoded = %x", buffer.Bytes())
	}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "00ff", "want 8"},
		{"not hex", "zzzzzzzz", "not hex"},
		{"empty", "\n", "want 8"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadHex(write(test.name, test.content), 4)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("err = %v, want containing %q", err, test.want)
			}
		})
	}

	if _, err := ReadHex(filepath.Join(directory, "missing"), 4); !os.IsNotExist(err) {
		t.Errorf("missing file: err = %v", err)
	}
}
