// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// local image store.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool. Every connection is
// opened in WAL mode with a busy timeout, so concurrent presence
// lookups never wait on an upload being recorded. Connections are not
// safe for concurrent use: borrow one with [Pool.Take] and return it
// with [Pool.Put], or let [Pool.With] do both.
//
// Schemas are versioned with PRAGMA user_version. [Migrate] applies the
// scripts a database has not yet seen, each in its own transaction:
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/chatimage/uploads.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitepool.Migrate(conn, migrations)
//	    },
//	})
//
// Callers write SQL directly with sqlitex.Execute and manage write
// transactions with sqlitex.ImmediateTransaction. There is no query
// builder.
package sqlitepool
