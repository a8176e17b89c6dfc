// Package dbx provides the minimal database/sql surface shared by the
// Postgres repositories. Both *sql.DB and *sql.Tx satisfy DBTX, so a
// repository can be bound to either.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
