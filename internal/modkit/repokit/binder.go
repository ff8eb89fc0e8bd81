package repokit

import "context"

// Binder builds a repo bound to a specific Queryer (pool or tx)
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a function to the Binder interface
type BindFunc[T any] func(q Queryer) T

// Bind implements Binder
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// WithTx runs fn inside a transaction with a repo bound to that tx
func WithTx[T any](ctx context.Context, runner TxRunner, b Binder[T], fn func(ctx context.Context, repo T) error) error {
	return runner.Tx(ctx, func(q Queryer) error {
		return fn(ctx, b.Bind(q))
	})
}
