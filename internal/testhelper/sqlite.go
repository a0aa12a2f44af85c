package testhelper

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB opens a private in-memory SQLite database for a single test.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	// an in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close sqlite database: %v", err)
		}
	})

	return db
}

// Exec runs statements against db and fails the test on the first error.
func Exec(t *testing.T, db *sql.DB, statements ...string) {
	t.Helper()

	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			t.Fatalf("failed to execute %q: %v", statement, err)
		}
	}
}

// CountRows returns how many rows of table have column equal to value.
func CountRows(t *testing.T, db *sql.DB, table, column, value string) int {
	t.Helper()

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM "%s" WHERE "%s" = $1`, table, column)
	if err := db.QueryRow(query, value).Scan(&count); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}

	return count
}
