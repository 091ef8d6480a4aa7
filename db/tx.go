package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrDisabled = errors.New("db is disabled")

type TxFunc[T any] func(*sqlx.Tx) (T, error)

// Tx runs fn inside a transaction, committing on success and rolling back on
// error or panic.
func Tx[T any](ctx context.Context, db *sqlx.DB, fn TxFunc[T]) (out T, err error) {
	var zero T
	if db == nil {
		return zero, ErrDisabled
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	out, err = fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}
