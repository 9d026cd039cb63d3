package data

import (
	"context"
	"fmt"

	"go-marketplace/internal/domain"
	"go-marketplace/internal/domain/event"
	"go-marketplace/internal/infra/eventbus"

	"github.com/doug-martin/goqu/v9"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.UnitOfWork = (*unitOfWork)(nil)

type txKey struct{}

// txState is the transaction carried in the context by Do.
type txState struct {
	tx          *goqu.TxDatabase
	aggregates  []domain.AggregateRoot
	afterCommit []func(context.Context)
}

// unitOfWork implements domain.UnitOfWork with transaction support and outbox pattern.
type unitOfWork struct {
	db     *goqu.Database
	outbox *eventbus.OutboxPublisher
	log    *log.Helper
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(data *Data, outbox *eventbus.OutboxPublisher, logger log.Logger) domain.UnitOfWork {
	return &unitOfWork{
		db:     data.db,
		outbox: outbox,
		log:    log.NewHelper(logger),
	}
}

// Do executes the function within a database transaction.
// Events of tracked aggregates are stored in the outbox table within the same transaction.
// A Do nested inside another joins the outer transaction.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if stateFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin tx: %w", err)
	}

	// Store tx in context for repositories to use
	state := &txState{tx: tx}
	txCtx := context.WithValue(ctx, txKey{}, state)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		u.rollback(ctx, tx)
		return err
	}

	// Store events in outbox within the same transaction
	if err := u.storeEventsInOutbox(txCtx, state); err != nil {
		u.rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError(fmt.Errorf("could not commit tx: %w", err))
	}

	// Clear events after successful commit
	for _, aggregate := range state.aggregates {
		aggregate.ClearEvents()
	}
	for _, hook := range state.afterCommit {
		hook(ctx)
	}

	return nil
}

func (u *unitOfWork) rollback(ctx context.Context, tx *goqu.TxDatabase) {
	if rbErr := tx.Rollback(); rbErr != nil {
		u.log.WithContext(ctx).Errorf("rollback failed: %v", rbErr)
	}
}

// storeEventsInOutbox stores all events from tracked aggregates in the outbox table.
func (u *unitOfWork) storeEventsInOutbox(ctx context.Context, state *txState) error {
	var events []event.Event
	for _, aggregate := range state.aggregates {
		events = append(events, aggregate.Events()...)
	}

	return u.outbox.PublishInTx(ctx, state.tx, events)
}

func stateFromContext(ctx context.Context) *txState {
	state, _ := ctx.Value(txKey{}).(*txState)
	return state
}

// TxFromContext retrieves the transaction from context.
func TxFromContext(ctx context.Context) *goqu.TxDatabase {
	if state := stateFromContext(ctx); state != nil {
		return state.tx
	}
	return nil
}

// trackAggregate registers an aggregate saved inside Do so its events reach the outbox.
func trackAggregate(ctx context.Context, aggregate domain.AggregateRoot) {
	state := stateFromContext(ctx)
	if state == nil {
		return
	}
	for _, a := range state.aggregates {
		if a == aggregate {
			return
		}
	}
	state.aggregates = append(state.aggregates, aggregate)
}

// AfterCommit runs hook once the surrounding transaction commits, or right
// away when ctx carries no transaction.
func AfterCommit(ctx context.Context, hook func(context.Context)) {
	state := stateFromContext(ctx)
	if state == nil {
		hook(ctx)
		return
	}
	state.afterCommit = append(state.afterCommit, hook)
}
