package shared

import "context"

// TxManager runs a unit of work inside a single storage transaction.
// Repositories called with the ctx passed to fn join that transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
