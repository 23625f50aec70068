// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mintstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/fairmint/lib/mint"
	"github.com/bureau-foundation/fairmint/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS collection (
	id                  INTEGER PRIMARY KEY CHECK (id = 1),
	root                BLOB    NOT NULL,
	hash                TEXT    NOT NULL,
	max_supply          INTEGER NOT NULL,
	supply              INTEGER NOT NULL,
	pass_address        BLOB    NOT NULL,
	placeholder_locator TEXT    NOT NULL,
	base_locator        TEXT    NOT NULL,
	revealed            INTEGER NOT NULL DEFAULT 0,
	reveal_offset       INTEGER NOT NULL DEFAULT 0,
	revealed_at         INTEGER NOT NULL DEFAULT 0,
	updated_at          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS claims (
	identity BLOB    PRIMARY KEY,
	claimed  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	first_id   INTEGER PRIMARY KEY,
	unit_count INTEGER NOT NULL,
	owner      BLOB    NOT NULL
);

CREATE INDEX IF NOT EXISTS allocations_owner ON allocations (owner);
`

// ErrNotInitialized is returned by Commit when a non-initialize change
// arrives before the collection row exists.
var ErrNotInitialized = errors.New("mintstore: collection not initialized")

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the database file. Its directory must exist.
	Path string

	// PoolSize defaults to sqlitepool.DefaultPoolSize.
	PoolSize int

	// Synchronous is passed to sqlitepool ("FULL" when empty).
	Synchronous string

	Logger *slog.Logger
}

// Store persists engine state in SQLite. It implements mint.Store.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens (creating if needed) the database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:        cfg.Path,
		PoolSize:    cfg.PoolSize,
		Synchronous: cfg.Synchronous,
		Logger:      logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mintstore: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Load implements mint.Store.
func (s *Store) Load(ctx context.Context) (_ *mint.Snapshot, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("mintstore: load: %w", err)
	}
	defer s.pool.Put(conn)

	// A read transaction gives the three queries one consistent view.
	endTransaction := sqlitex.Transaction(conn)
	defer endTransaction(&err)

	var snapshot *mint.Snapshot
	err = sqlitex.Execute(conn, `
		SELECT root, hash, max_supply, supply, pass_address,
		       placeholder_locator, base_locator,
		       revealed, reveal_offset, revealed_at, updated_at
		FROM collection WHERE id = 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				snapshot = &mint.Snapshot{
					Root:        common.BytesToHash(columnBytes(stmt, 0)),
					Hash:        stmt.ColumnText(1),
					MaxSupply:   uint64(stmt.ColumnInt64(2)),
					Supply:      uint64(stmt.ColumnInt64(3)),
					PassAddress: common.BytesToAddress(columnBytes(stmt, 4)),
					Reveal: mint.RevealSnapshot{
						PlaceholderLocator: stmt.ColumnText(5),
						BaseLocator:        stmt.ColumnText(6),
						Revealed:           stmt.ColumnInt64(7) != 0,
						Offset:             uint64(stmt.ColumnInt64(8)),
						RevealedAt:         stmt.ColumnInt64(9),
					},
					UpdatedAt: stmt.ColumnInt64(10),
				}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("mintstore: reading collection: %w", err)
	}
	if snapshot == nil {
		return nil, nil
	}

	err = sqlitex.Execute(conn, "SELECT identity, claimed FROM claims ORDER BY identity",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				snapshot.Claims = append(snapshot.Claims, mint.ClaimRecord{
					Identity: common.BytesToAddress(columnBytes(stmt, 0)),
					Claimed:  uint64(stmt.ColumnInt64(1)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("mintstore: reading claims: %w", err)
	}

	err = sqlitex.Execute(conn, "SELECT first_id, unit_count, owner FROM allocations ORDER BY first_id",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				snapshot.Allocations = append(snapshot.Allocations, mint.Allocation{
					First: uint64(stmt.ColumnInt64(0)),
					Count: uint64(stmt.ColumnInt64(1)),
					Owner: common.BytesToAddress(columnBytes(stmt, 2)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("mintstore: reading allocations: %w", err)
	}

	s.logger.Debug("loaded collection state",
		"supply", snapshot.Supply,
		"claims", len(snapshot.Claims),
		"allocations", len(snapshot.Allocations),
	)
	return snapshot, nil
}

// Commit implements mint.Store. Only ChangeInitialize reads the full
// snapshot.
func (s *Store) Commit(ctx context.Context, change mint.Change, snapshot func() *mint.Snapshot) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("mintstore: commit: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("mintstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	if change.Kind == mint.ChangeInitialize {
		return writeSnapshot(conn, snapshot())
	}

	switch change.Kind {
	case mint.ChangeClaim:
		err = sqlitex.Execute(conn, `
			INSERT INTO claims (identity, claimed) VALUES (?, ?)
			ON CONFLICT (identity) DO UPDATE SET claimed = excluded.claimed`,
			&sqlitex.ExecOptions{Args: []any{change.Identity.Bytes(), int64(change.Claimed)}})
		if err != nil {
			return fmt.Errorf("mintstore: writing claim record: %w", err)
		}
		err = sqlitex.Execute(conn,
			"INSERT INTO allocations (first_id, unit_count, owner) VALUES (?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{
				int64(change.Allocation.First),
				int64(change.Allocation.Count),
				change.Allocation.Owner.Bytes(),
			}})
		if err != nil {
			return fmt.Errorf("mintstore: writing allocation: %w", err)
		}
		err = updateCollection(conn, "supply = ?", int64(change.Supply), change.At)

	case mint.ChangeReveal:
		err = updateCollection(conn, "revealed = 1, reveal_offset = ?, revealed_at = ?",
			int64(change.Offset), change.At, change.At)

	case mint.ChangeBaseLocator:
		err = updateCollection(conn, "base_locator = ?", change.Locator, change.At)

	case mint.ChangePlaceholderLocator:
		err = updateCollection(conn, "placeholder_locator = ?", change.Locator, change.At)

	case mint.ChangeRoot:
		err = updateCollection(conn, "root = ?", change.Root.Bytes(), change.At)

	case mint.ChangePassAddress:
		err = updateCollection(conn, "pass_address = ?", change.PassAddress.Bytes(), change.At)

	default:
		return fmt.Errorf("mintstore: unknown change kind %q", change.Kind)
	}
	if err != nil {
		return fmt.Errorf("mintstore: %s: %w", change.Kind, err)
	}
	return nil
}

// updateCollection sets the given columns plus updated_at on the
// collection row. The last argument is the updated_at value.
func updateCollection(conn *sqlite.Conn, assignments string, args ...any) error {
	err := sqlitex.Execute(conn,
		"UPDATE collection SET "+assignments+", updated_at = ? WHERE id = 1",
		&sqlitex.ExecOptions{Args: args})
	if err != nil {
		return err
	}
	if conn.Changes() != 1 {
		return ErrNotInitialized
	}
	return nil
}

// writeSnapshot replaces all stored state with snapshot.
func writeSnapshot(conn *sqlite.Conn, snapshot *mint.Snapshot) error {
	if err := sqlitex.ExecuteScript(conn, "DELETE FROM claims; DELETE FROM allocations; DELETE FROM collection;", nil); err != nil {
		return fmt.Errorf("mintstore: clearing state: %w", err)
	}

	reveal := snapshot.Reveal
	err := sqlitex.Execute(conn, `
		INSERT INTO collection (
			id, root, hash, max_supply, supply, pass_address,
			placeholder_locator, base_locator,
			revealed, reveal_offset, revealed_at, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			snapshot.Root.Bytes(),
			snapshot.Hash,
			int64(snapshot.MaxSupply),
			int64(snapshot.Supply),
			snapshot.PassAddress.Bytes(),
			reveal.PlaceholderLocator,
			reveal.BaseLocator,
			boolInt(reveal.Revealed),
			int64(reveal.Offset),
			reveal.RevealedAt,
			snapshot.UpdatedAt,
		}})
	if err != nil {
		return fmt.Errorf("mintstore: writing collection: %w", err)
	}

	for _, record := range snapshot.Claims {
		err := sqlitex.Execute(conn, "INSERT INTO claims (identity, claimed) VALUES (?, ?)",
			&sqlitex.ExecOptions{Args: []any{record.Identity.Bytes(), int64(record.Claimed)}})
		if err != nil {
			return fmt.Errorf("mintstore: writing claim record: %w", err)
		}
	}
	for _, allocation := range snapshot.Allocations {
		err := sqlitex.Execute(conn, "INSERT INTO allocations (first_id, unit_count, owner) VALUES (?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{
				int64(allocation.First),
				int64(allocation.Count),
				allocation.Owner.Bytes(),
			}})
		if err != nil {
			return fmt.Errorf("mintstore: writing allocation: %w", err)
		}
	}
	return nil
}

func columnBytes(stmt *sqlite.Stmt, column int) []byte {
	buffer := make([]byte, stmt.ColumnLen(column))
	stmt.ColumnBytes(column, buffer)
	return buffer
}

func boolInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
