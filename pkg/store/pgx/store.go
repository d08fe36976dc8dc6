// Package pgx implements store.StyleStorage on PostgreSQL with pgvector.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxIConn abstracts over pgxpool.Pool, pgx.Conn and transactions so the
// storage works with whichever the caller owns.
type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// StyleDBStorage is the PostgreSQL-backed style knowledge graph store.
type StyleDBStorage struct {
	conn pgxIConn
}

// NewStyleDBStorage wraps an existing connection or pool. Lifecycle stays
// with the caller.
func NewStyleDBStorage(conn pgxIConn) *StyleDBStorage {
	return &StyleDBStorage{conn: conn}
}
