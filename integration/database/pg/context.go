package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// Beginner starts transactions. *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx attaches tx to ctx. A nil tx leaves ctx unchanged.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction attached with WithTx.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// InTx runs fn with a transaction attached to its context, committing when fn
// returns nil and rolling back otherwise. If ctx already carries a transaction,
// fn runs in a savepoint of it.
func InTx(ctx context.Context, db Beginner, fn func(ctx context.Context) error) error {
	if tx, ok := TxFromContext(ctx); ok {
		db = tx
	}
	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}
