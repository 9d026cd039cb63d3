package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-marketplace/internal/domain/event"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/doug-martin/goqu/v9"
)

// OutboxTable holds events written in the same transaction as the aggregate change.
const OutboxTable = "outbox_messages"

// Inserter is satisfied by *goqu.TxDatabase and *goqu.Database.
type Inserter interface {
	Insert(table interface{}) *goqu.InsertDataset
}

// outboxRow is one stored message.
type outboxRow struct {
	UUID        string    `db:"uuid"`
	EventName   string    `db:"event_name"`
	AggregateID string    `db:"aggregate_id"`
	Payload     []byte    `db:"payload"`
	Metadata    string    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r outboxRow) toMessage() (*message.Message, error) {
	msg := message.NewMessage(r.UUID, r.Payload)
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &msg.Metadata); err != nil {
			return nil, fmt.Errorf("could not unmarshal outbox metadata: %w", err)
		}
	}
	return msg, nil
}

// OutboxPublisher publishes events to the outbox table within a transaction.
type OutboxPublisher struct{}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher() *OutboxPublisher {
	return &OutboxPublisher{}
}

// PublishInTx stores events in the outbox table using the provided transaction.
func (p *OutboxPublisher) PublishInTx(ctx context.Context, tx Inserter, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]outboxRow, 0, len(events))
	for _, e := range events {
		msg, err := EventToMessage(e)
		if err != nil {
			return err
		}

		metadata, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("could not marshal outbox metadata: %w", err)
		}

		rows = append(rows, outboxRow{
			UUID:        msg.UUID,
			EventName:   e.EventName(),
			AggregateID: e.AggregateID(),
			Payload:     msg.Payload,
			Metadata:    string(metadata),
			CreatedAt:   e.OccurredAt(),
		})
	}

	if _, err := tx.Insert(OutboxTable).
		Prepared(true).
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store events in outbox: %w", err)
	}

	return nil
}
