package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey string

const keyTxConn = txKey("tx_conn")

// conn is the common surface of *sqlx.DB and *sqlx.Tx the queries run on.
type conn interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Chk returns the transaction bound to the context, if any, otherwise the
// plain connection.
func (r *Repository) Chk(ctx context.Context) conn {
	if tx, ok := ctx.Value(keyTxConn).(*sqlx.Tx); ok {
		return tx
	}
	return r.connection
}

// WithTx runs cb inside one transaction; any repository call made with the
// callback's context joins it. Rolls back on error, commits otherwise.
func (r *Repository) WithTx(ctx context.Context, cb func(ctx context.Context) error) error {
	if _, ok := ctx.Value(keyTxConn).(*sqlx.Tx); ok {
		// уже внутри транзакции
		return cb(ctx)
	}

	tx, err := r.connection.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	if err := cb(context.WithValue(ctx, keyTxConn, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}
