// Package sqlite implements the repository interfaces using SQLite as the
// storage backend (modernc.org/sqlite: pure Go, no CGo, ":memory:" for
// tests).
//
// Each caller-visible operation runs inside a single transaction. The two
// invariants the store itself enforces, rather than the application:
//
//   - tags.name UNIQUE: two concurrent creates/renames with the same target
//     name cannot both succeed; the loser gets apperror.ErrDuplicateName.
//   - users.email UNIQUE: two concurrent first logins for the same email
//     cannot both insert; the loser gets apperror.ErrConflict and re-reads.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a sql.DB connection pool. The per-entity stores (UserStore,
// TagStore, ItemStore) share one DB; services receive them through the
// interfaces in package repository, never directly.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs the schema.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection keeps
	// writes serialized and makes ":memory:" behave as one database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: exec %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver does not export a typed error for this, so we match
// the stable message prefix, the same way the rest of the ecosystem does.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// inPlaceholders returns a "(?, ?, ...)" group with n placeholders,
// for IN clauses built from variable-length id lists.
func inPlaceholders(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
