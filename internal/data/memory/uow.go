package memory

import (
	"context"

	"go-marketplace/internal/domain"
)

// Compile-time interface check
var _ domain.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork buffers listing writes and applies them atomically on commit.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit of work over store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Do runs fn with a pending transaction in its context. A Do nested inside
// another joins the outer transaction. Events are cleared after commit.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	t := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := u.store.commit(t); err != nil {
		return err
	}

	for _, a := range t.aggregates {
		a.ClearEvents()
	}
	return nil
}
