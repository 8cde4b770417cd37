// Package store is the Postgres persistence layer for the catalog.
//
// Queries wraps any DBTX, so the same methods run against a pool, a single
// connection, or a transaction. Import writes are issued one statement at a
// time; there is no transaction spanning a batch.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/virex/internal/catalog"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DBTX is the subset of pgx shared by pools, connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs catalog statements against a DBTX.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

//go:embed schema.sql
var schemaSQL string

// Migrate creates the base schema and one table per registered category.
// Every statement is idempotent.
func (q *Queries) Migrate(ctx context.Context) error {
	if _, err := q.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply base schema: %w", err)
	}
	for _, def := range catalog.All() {
		if _, err := q.db.Exec(ctx, def.DDL()); err != nil {
			return fmt.Errorf("create category table %s: %w", def.Table, err)
		}
		if _, err := q.db.Exec(ctx,
			`INSERT INTO categories (name, slug) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			def.Category, def.Key,
		); err != nil {
			return fmt.Errorf("seed category %s: %w", def.Category, err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (q *Queries) Ping(ctx context.Context) error {
	var one int
	return q.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdentifier(c)
	}
	return out
}
