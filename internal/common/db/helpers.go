package db

import (
	"context"
	"database/sql"
	"errors"
)

// Querier is the read/write surface shared by Database and Transaction.
// Repository internals take a Querier so the same lookup runs inside or
// outside a transaction.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
}

// GetQuerier picks the transaction when one is in flight, otherwise
// the pool.
func GetQuerier(database Database, tx Transaction) Querier {
	if tx != nil {
		return tx
	}
	return database
}

// IsNoRows reports whether err means the lookup matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
