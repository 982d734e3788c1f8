package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dbc "usersettings/internal/app/db/sqlc"
)

// Store is the query surface used by handlers, plus transactions.
type Store interface {
	dbc.Querier

	// ExecTx runs fn inside one transaction, committing when fn returns nil.
	ExecTx(ctx context.Context, fn func(q dbc.Querier) error) error
}

// SQLStore is the pgxpool-backed Store.
type SQLStore struct {
	*dbc.Queries
	pool *pgxpool.Pool
}

var _ Store = (*SQLStore)(nil)

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{
		Queries: dbc.New(pool),
		pool:    pool,
	}
}

// ExecTx implements Store.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(q dbc.Querier) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(s.Queries.WithTx(tx))
	})
}
