package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/alexanderramin/rapport/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory database closed at test end.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountRows counts the rows of table, for asserting that a rolled-back
// write left nothing behind.
func CountRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	err := database.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	require.NoError(t, err, "counting %s", table)
	return n
}
