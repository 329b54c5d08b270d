// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SchemaVersion returns the database's PRAGMA user_version.
func SchemaVersion(conn *sqlite.Conn) (int, error) {
	var version int
	err := sqlitex.ExecuteTransient(conn, "PRAGMA user_version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("sqlitepool: reading schema version: %w", err)
	}
	return version, nil
}

// Migrate brings the schema up to len(migrations). migrations[i] moves
// the database from version i to i+1 and runs in an IMMEDIATE
// transaction together with the version bump, so concurrent
// connections racing to migrate apply each script once. A database
// newer than the migration list is an error.
func Migrate(conn *sqlite.Conn, migrations []string) error {
	for {
		done, err := migrateStep(conn, migrations)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func migrateStep(conn *sqlite.Conn, migrations []string) (done bool, err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return false, fmt.Errorf("sqlitepool: begin migration: %w", err)
	}
	defer endTransaction(&err)

	version, err := SchemaVersion(conn)
	if err != nil {
		return false, err
	}
	if version > len(migrations) {
		return false, fmt.Errorf("sqlitepool: database schema version %d is newer than this program (%d)", version, len(migrations))
	}
	if version == len(migrations) {
		return true, nil
	}

	if err := sqlitex.ExecuteScript(conn, migrations[version], nil); err != nil {
		return false, fmt.Errorf("sqlitepool: migration %d: %w", version+1, err)
	}
	// PRAGMA does not accept bound parameters.
	if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA user_version = %d", version+1), nil); err != nil {
		return false, fmt.Errorf("sqlitepool: recording schema version %d: %w", version+1, err)
	}
	return false, nil
}
