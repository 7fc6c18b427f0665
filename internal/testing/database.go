// Package testing holds fixtures shared by gaffer's package tests: an
// in-memory run database and fixture files on disk.
package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// memoryDSN opens a private in-memory database with foreign keys enforced,
// so deleting a run cascades to its associations and messages.
const memoryDSN = "file::memory:?_foreign_keys=on"

// CreateTestDB opens an empty in-memory SQLite database for the run store.
// The pool holds a single connection since each new connection would see
// its own empty database. Callers apply the schema with db.Migrate.
func CreateTestDB(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", memoryDSN)
	require.NoError(t, err, "open run store database")
	conn.SetMaxOpenConns(1)
	require.NoError(t, conn.Ping(), "open run store database")

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
