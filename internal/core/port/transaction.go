package port

import "context"

// Transactor runs fn inside one all-or-nothing store transaction. The
// transaction travels in the context handed to fn; repositories called with
// that context join it. A nested call reuses the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}
