/*
Package db holds the typed PostgreSQL queries over the users table.

The code follows sqlc's pgx/v5 output layout (sqlc.yaml) but is maintained by
hand: every query constant mirrors a named query in ../queries/users.sql, with
"*" expanded to the users column list, and queries_test.go keeps the two in step.
*/
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}
