// Package testutil provides migrated catalog databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/config"
	"github.com/GTDGit/catalog_api/internal/database"
)

// NewDB returns a migrated in-memory SQLite database with foreign keys on.
// The pool holds a single connection because every connection to ":memory:"
// opens its own empty database.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// NewFileDB returns a migrated SQLite database in a temporary file, opened
// through database.Connect with a pool of several connections.
func NewFileDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.Connect(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "catalog.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
