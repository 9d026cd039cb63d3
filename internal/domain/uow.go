package domain

import (
	"context"
)

// UnitOfWork manages database transactions and the outbox.
type UnitOfWork interface {
	// Do executes fn within a transaction carried by the context passed to fn.
	// Aggregates saved through a repository inside fn are tracked; their events
	// are written to the outbox in the same transaction and cleared after commit.
	// If fn returns an error or panics, the transaction is rolled back.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
