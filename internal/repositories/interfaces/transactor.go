package interfaces

import "context"

// Transactor runs fn inside a single transaction. Repository calls made with
// the context passed to fn participate in it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
