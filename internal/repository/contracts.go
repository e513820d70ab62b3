package repository

import (
	"context"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// Handles picked up from ctx inside fn belong to the transaction.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution over a guarded handle.
// Begin and commit failures come back normalized; fn's own error is returned untouched.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}
