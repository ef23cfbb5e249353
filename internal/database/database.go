package database

import (
	"context"

	"github.com/uptrace/bun"
)

type contextKey struct{}

var txKey contextKey

// WithTx returns a context carrying an open bun transaction. Repositories and
// storages resolve it via From so multi-store operations share one unit of
// work.
func WithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// From returns the transaction carried by the context, or the fallback
// handle when none is present.
func From(ctx context.Context, fallback bun.IDB) bun.IDB {
	if ctx != nil {
		if tx, ok := ctx.Value(txKey).(bun.Tx); ok {
			return tx
		}
	}
	return fallback
}

// TxRunner executes a function inside a single storage transaction. The
// in-memory implementations run the function directly; the bun implementation
// opens a real transaction and threads it through the context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BunTxRunner is the bun-backed TxRunner.
type BunTxRunner struct {
	db *bun.DB
}

func NewBunTxRunner(db *bun.DB) *BunTxRunner {
	return &BunTxRunner{db: db}
}

func (r *BunTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}

// PassthroughTxRunner runs the function without transactional guarantees.
// Used with the in-memory repositories where every operation is already
// atomic under a mutex.
type PassthroughTxRunner struct{}

func (PassthroughTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
