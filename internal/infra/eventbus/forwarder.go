package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultBatchSize    = 100
)

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

// WithPollInterval sets how often the outbox is polled.
func WithPollInterval(d time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithBatchSize sets how many rows are forwarded per poll.
func WithBatchSize(n int) ForwarderOption {
	return func(f *Forwarder) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// Forwarder reads messages from the outbox table and forwards them to the event bus.
// Delivery is at-least-once: a row is deleted only after it was published.
type Forwarder struct {
	db           *goqu.Database
	publisher    message.Publisher
	topic        string
	pollInterval time.Duration
	batchSize    int
	logger       watermill.LoggerAdapter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewForwarder creates a new outbox forwarder.
func NewForwarder(
	db *goqu.Database,
	publisher message.Publisher,
	logger watermill.LoggerAdapter,
	opts ...ForwarderOption,
) *Forwarder {
	f := &Forwarder{
		db:           db,
		publisher:    publisher,
		topic:        ListingEventsTopic,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start begins forwarding messages from the outbox.
func (f *Forwarder) Start(ctx context.Context) {
	f.ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	go f.run()
	f.logger.Info("outbox forwarder started", watermill.LogFields{
		"poll_interval": f.pollInterval.String(),
		"batch_size":    f.batchSize,
	})
}

// Stop stops the forwarder gracefully.
func (f *Forwarder) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
	f.logger.Info("outbox forwarder stopped", nil)
}

func (f *Forwarder) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			if _, err := f.ForwardBatch(f.ctx); err != nil && f.ctx.Err() == nil {
				f.logger.Error("failed to forward outbox batch", err, nil)
			}
		}
	}
}

// ForwardBatch publishes one batch of outbox rows, oldest first, and returns
// how many were forwarded. On Postgres the batch is locked with SKIP LOCKED so
// several replicas can poll the same table.
func (f *Forwarder) ForwardBatch(ctx context.Context) (int, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin outbox tx: %w", err)
	}

	forwarded := 0
	err = tx.Wrap(func() error {
		ds := tx.From(OutboxTable).
			Prepared(true).
			Order(goqu.I("created_at").Asc(), goqu.I("uuid").Asc()).
			Limit(uint(f.batchSize))
		if f.db.Dialect() == "postgres" {
			ds = ds.ForUpdate(exp.SkipLocked)
		}

		var rows []outboxRow
		if err := ds.ScanStructsContext(ctx, &rows); err != nil {
			return fmt.Errorf("could not query outbox messages: %w", err)
		}

		sent := make([]string, 0, len(rows))
		for _, row := range rows {
			if err := f.forwardMessage(row); err != nil {
				f.logger.Error("failed to forward message", err, watermill.LogFields{
					"uuid": row.UUID,
				})
				continue
			}
			sent = append(sent, row.UUID)
		}
		if len(sent) == 0 {
			return nil
		}

		if _, err := tx.Delete(OutboxTable).
			Prepared(true).
			Where(goqu.I("uuid").In(sent)).
			Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("could not delete forwarded outbox messages: %w", err)
		}
		forwarded = len(sent)

		return nil
	})

	return forwarded, err
}

func (f *Forwarder) forwardMessage(row outboxRow) error {
	msg, err := row.toMessage()
	if err != nil {
		return err
	}

	if err := f.publisher.Publish(f.topic, msg); err != nil {
		return err
	}

	f.logger.Debug("forwarded message", watermill.LogFields{
		"uuid":       row.UUID,
		"event_name": row.EventName,
	})

	return nil
}
