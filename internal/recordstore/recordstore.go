// Package recordstore deletes account data directly in the database.
//
// It is the alternative to deleting through the REST API when the eraser
// runs next to the database and holds a privileged connection string.
package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrInvalidIdentifier is returned when a collection or column name is not a plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore deletes rows through database/sql.
//
// The statement only uses $1 placeholders and double-quoted identifiers,
// which both PostgreSQL and SQLite accept.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an opened database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenPostgres opens a PostgreSQL database traced with OpenTelemetry.
func OpenPostgres(ctx context.Context, databaseURL string) (*SQLStore, error) {
	connConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	connConfig.Tracer = otelpgx.NewTracer()

	db := stdlib.OpenDB(*connConfig)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewSQLStore(db), nil
}

// DeleteByKey deletes every row of collection whose keyColumn equals value.
func (s *SQLStore) DeleteByKey(ctx context.Context, collection, keyColumn, value string) (int64, error) {
	if !identifierPattern.MatchString(collection) {
		return 0, fmt.Errorf("%w: collection %q", ErrInvalidIdentifier, collection)
	}
	if !identifierPattern.MatchString(keyColumn) {
		return 0, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, keyColumn)
	}

	statement := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", quoteIdentifier(collection), quoteIdentifier(keyColumn))

	result, err := s.db.ExecContext(ctx, statement, value)
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return count, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
