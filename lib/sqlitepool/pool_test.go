// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/chatimage/lib/sqlitepool"
)

func TestOpenAppliesPragmas(t *testing.T) {
	pool := openTestPool(t, "pragmas.db", nil)

	err := pool.With(context.Background(), func(conn *sqlite.Conn) error {
		if mode := queryText(t, conn, "PRAGMA journal_mode"); mode != "wal" {
			t.Errorf("journal_mode = %q, want wal", mode)
		}
		if synchronous := queryText(t, conn, "PRAGMA synchronous"); synchronous != "1" {
			t.Errorf("synchronous = %s, want 1 (NORMAL)", synchronous)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if !strings.HasSuffix(pool.Path(), "pragmas.db") {
		t.Errorf("Path() = %q", pool.Path())
	}
}

func TestMigrate(t *testing.T) {
	migrations := []string{
		`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`,
		`ALTER TABLE widgets ADD COLUMN colour TEXT NOT NULL DEFAULT '';`,
	}
	path := filepath.Join(t.TempDir(), "migrate.db")

	first := openPoolAt(t, path, func(conn *sqlite.Conn) error {
		return sqlitepool.Migrate(conn, migrations[:1])
	})
	err := first.With(context.Background(), func(conn *sqlite.Conn) error {
		version, err := sqlitepool.SchemaVersion(conn)
		if err != nil {
			return err
		}
		if version != 1 {
			t.Errorf("schema version = %d, want 1", version)
		}
		return sqlitex.Execute(conn, "INSERT INTO widgets (name) VALUES (?)", &sqlitex.ExecOptions{Args: []any{"gear"}})
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening with a longer list applies only the new step.
	second := openPoolAt(t, path, func(conn *sqlite.Conn) error {
		return sqlitepool.Migrate(conn, migrations)
	})
	err = second.With(context.Background(), func(conn *sqlite.Conn) error {
		version, err := sqlitepool.SchemaVersion(conn)
		if err != nil {
			return err
		}
		if version != 2 {
			t.Errorf("schema version = %d, want 2", version)
		}
		if got := queryText(t, conn, "SELECT name || '/' || colour FROM widgets"); got != "gear/" {
			t.Errorf("migrated row = %q, want gear/", got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Close(); err != nil {
		t.Fatal(err)
	}

	// An older program refuses a newer database.
	older := openPoolAt(t, path, func(conn *sqlite.Conn) error {
		return sqlitepool.Migrate(conn, migrations[:1])
	})
	t.Cleanup(func() { older.Close() })
	if err := older.With(context.Background(), func(*sqlite.Conn) error { return nil }); err == nil {
		t.Error("Take succeeded against a newer schema")
	}
}

func TestMigrateConcurrentConnections(t *testing.T) {
	migrations := []string{`CREATE TABLE counters (name TEXT PRIMARY KEY);`}
	pool := openTestPool(t, "concurrent.db", func(conn *sqlite.Conn) error {
		return sqlitepool.Migrate(conn, migrations)
	})

	const goroutineCount = 8
	var waitGroup sync.WaitGroup
	failures := make(chan error, goroutineCount)
	for i := 0; i < goroutineCount; i++ {
		i := i
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			err := pool.With(context.Background(), func(conn *sqlite.Conn) error {
				return sqlitex.Execute(conn, "INSERT INTO counters (name) VALUES (?)", &sqlitex.ExecOptions{
					Args: []any{fmt.Sprintf("worker-%d", i)},
				})
			})
			if err != nil {
				failures <- err
			}
		}()
	}
	waitGroup.Wait()
	close(failures)
	for err := range failures {
		t.Error(err)
	}
}

func TestWithPropagatesError(t *testing.T) {
	pool := openTestPool(t, "with.db", nil)
	sentinel := errors.New("stop")
	if err := pool.With(context.Background(), func(*sqlite.Conn) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("With err = %v, want sentinel", err)
	}
}

func TestEmptyPathRejected(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestContextCancellation(t *testing.T) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "cancel.db"),
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}

	// The only connection is borrowed, so a cancelled Take must fail.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Take(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}

	pool.Put(conn)
}

func queryText(t *testing.T, conn *sqlite.Conn, query string) string {
	t.Helper()
	var result string
	err := sqlitex.ExecuteTransient(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			result = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return result
}

// openTestPool opens a pool on a fresh file in the test's temporary
// directory and closes it when the test completes.
func openTestPool(t *testing.T, name string, onConnect func(*sqlite.Conn) error) *sqlitepool.Pool {
	t.Helper()
	pool := openPoolAt(t, filepath.Join(t.TempDir(), name), onConnect)
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}

func openPoolAt(t *testing.T, path string, onConnect func(*sqlite.Conn) error) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      path,
		PoolSize:  4,
		OnConnect: onConnect,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return pool
}
