package recordstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/database-playground/account-eraser/internal/recordstore"
	"github.com/database-playground/account-eraser/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var schema = []string{
	`CREATE TABLE "JournalEntries" (id INTEGER PRIMARY KEY, user_id TEXT NOT NULL, body TEXT)`,
	`CREATE TABLE profiles (id TEXT PRIMARY KEY, display_name TEXT)`,
	`INSERT INTO "JournalEntries" (user_id, body) VALUES ('abc123', 'one'), ('abc123', 'two'), ('other', 'three')`,
	`INSERT INTO profiles (id, display_name) VALUES ('abc123', 'me'), ('other', 'you')`,
}

func TestSQLStore_DeleteByKey(t *testing.T) {
	db := testhelper.NewSQLiteDB(t)
	testhelper.Exec(t, db, schema...)
	store := recordstore.NewSQLStore(db)
	ctx := context.Background()

	count, err := store.DeleteByKey(ctx, "JournalEntries", "user_id", "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.DeleteByKey(ctx, "profiles", "id", "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Zero(t, testhelper.CountRows(t, db, "JournalEntries", "user_id", "abc123"))
	assert.Zero(t, testhelper.CountRows(t, db, "profiles", "id", "abc123"))

	// other accounts are untouched
	assert.Equal(t, 1, testhelper.CountRows(t, db, "JournalEntries", "user_id", "other"))
	assert.Equal(t, 1, testhelper.CountRows(t, db, "profiles", "id", "other"))
}

func TestSQLStore_DeleteByKey_Idempotent(t *testing.T) {
	db := testhelper.NewSQLiteDB(t)
	testhelper.Exec(t, db, schema...)
	store := recordstore.NewSQLStore(db)
	ctx := context.Background()

	_, err := store.DeleteByKey(ctx, "JournalEntries", "user_id", "abc123")
	require.NoError(t, err)

	count, err := store.DeleteByKey(ctx, "JournalEntries", "user_id", "abc123")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLStore_DeleteByKey_InvalidIdentifier(t *testing.T) {
	db := testhelper.NewSQLiteDB(t)
	testhelper.Exec(t, db, schema...)
	store := recordstore.NewSQLStore(db)

	tests := []struct {
		name       string
		collection string
		column     string
	}{
		{name: "injected collection", collection: `profiles"; DROP TABLE profiles; --`, column: "id"},
		{name: "injected column", collection: "profiles", column: "id = id OR 1"},
		{name: "empty collection", collection: "", column: "id"},
		{name: "leading digit", collection: "1profiles", column: "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.DeleteByKey(context.Background(), tt.collection, tt.column, "abc123")
			require.ErrorIs(t, err, recordstore.ErrInvalidIdentifier)
		})
	}

	assert.Equal(t, 1, testhelper.CountRows(t, db, "profiles", "id", "abc123"))
}

func TestSQLStore_DeleteByKey_MissingTable(t *testing.T) {
	db := testhelper.NewSQLiteDB(t)
	store := recordstore.NewSQLStore(db)

	_, err := store.DeleteByKey(context.Background(), "insights_weekly", "user_id", "abc123")
	require.Error(t, err)
}

func TestOpenPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	databaseURL := testhelper.NewPostgresURL(t)
	ctx := context.Background()

	seed, err := sql.Open("pgx", databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = seed.Close() })
	testhelper.Exec(t, seed,
		`CREATE TABLE "JournalEntries" (id SERIAL PRIMARY KEY, user_id TEXT NOT NULL, body TEXT)`,
		`CREATE TABLE profiles (id TEXT PRIMARY KEY, display_name TEXT)`,
		`INSERT INTO "JournalEntries" (user_id, body) VALUES ('abc123', 'one'), ('abc123', 'two'), ('other', 'three')`,
		`INSERT INTO profiles (id, display_name) VALUES ('abc123', 'me'), ('other', 'you')`,
	)

	store, err := recordstore.OpenPostgres(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	count, err := store.DeleteByKey(ctx, "JournalEntries", "user_id", "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.DeleteByKey(ctx, "profiles", "id", "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.DeleteByKey(ctx, "profiles", "id", "abc123")
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Equal(t, 1, testhelper.CountRows(t, seed, "JournalEntries", "user_id", "other"))
	assert.Equal(t, 1, testhelper.CountRows(t, seed, "profiles", "id", "other"))
}

func TestOpenPostgres_BadURL(t *testing.T) {
	_, err := recordstore.OpenPostgres(context.Background(), "postgres://%zz")
	require.Error(t, err)
}
