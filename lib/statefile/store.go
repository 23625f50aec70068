// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statefile

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/fairmint/lib/codec"
	"github.com/bureau-foundation/fairmint/lib/mint"
)

const (
	magic         = "FMST"
	formatVersion = 1
	headerSize    = 10
)

// ErrBadHeader is returned by Load for a file that is not a state
// file or uses an unknown format version.
var ErrBadHeader = errors.New("statefile: bad header")

// Store keeps the engine state in a single file. It implements
// mint.Store.
type Store struct {
	path        string
	compression Compression
	logger      *slog.Logger
}

// New returns a Store writing to path. The parent directory is
// created on first commit.
func New(path string, compression Compression, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, compression: compression, logger: logger}
}

// Path returns the state file path.
func (s *Store) Path() string { return s.path }

// Load implements mint.Store. A missing file is an empty store.
func (s *Store) Load(context.Context) (*mint.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("statefile: reading %s: %w", s.path, err)
	}
	snapshot, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return snapshot, nil
}

// Commit implements mint.Store by rewriting the whole file.
func (s *Store) Commit(_ context.Context, change mint.Change, snapshot func() *mint.Snapshot) error {
	data, err := Encode(snapshot(), s.compression)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return err
	}
	s.logger.Debug("state file written",
		"path", s.path,
		"change", string(change.Kind),
		"bytes", len(data),
	)
	return nil
}

// Encode serializes snapshot into the state file format.
func Encode(snapshot *mint.Snapshot, compression Compression) ([]byte, error) {
	payload, err := codec.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("statefile: encoding snapshot: %w", err)
	}
	return frame(payload, compression)
}

// frame compresses payload and prepends the header. A payload the
// chosen algorithm cannot shrink is stored uncompressed.
func frame(payload []byte, compression Compression) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("statefile: snapshot of %d bytes is too large", len(payload))
	}

	compressed, err := compress(payload, compression)
	if errors.Is(err, errIncompressible) {
		compressed, compression = payload, CompressionNone
	} else if err != nil {
		return nil, err
	}

	data := make([]byte, headerSize, headerSize+len(compressed))
	copy(data, magic)
	data[4] = formatVersion
	data[5] = byte(compression)
	binary.BigEndian.PutUint32(data[6:10], uint32(len(payload)))
	return append(data, compressed...), nil
}

// Decode parses the state file format.
func Decode(data []byte) (*mint.Snapshot, error) {
	if len(data) < headerSize || string(data[:4]) != magic {
		return nil, ErrBadHeader
	}
	if data[4] != formatVersion {
		return nil, fmt.Errorf("%w: format version %d", ErrBadHeader, data[4])
	}
	size := int(binary.BigEndian.Uint32(data[6:10]))
	payload, err := decompress(data[headerSize:], Compression(data[5]), size)
	if err != nil {
		return nil, err
	}
	var snapshot mint.Snapshot
	if err := codec.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("statefile: decoding snapshot: %w", err)
	}
	return &snapshot, nil
}

// writeAtomic replaces path with data via a synced temporary file in
// the same directory.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("statefile: creating %s: %w", directory, err)
	}

	tmpFile, err := os.CreateTemp(directory, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("statefile: creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("statefile: writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("statefile: syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("statefile: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("statefile: renaming to %s: %w", path, err)
	}

	success = true
	return nil
}
