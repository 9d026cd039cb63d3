// Package event holds the domain events raised by the listing aggregate.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact recorded by an aggregate and delivered through the outbox.
type Event interface {
	EventID() string
	EventName() string
	OccurredAt() time.Time
	// AggregateID is the listing the event belongs to.
	AggregateID() string
}

// Base carries the identity and timing shared by every event. The JSON names
// are part of the outbox and NATS payload contract.
type Base struct {
	ID        string    `json:"event_id"`
	Timestamp time.Time `json:"occurred_at"`
	Aggregate string    `json:"aggregate_id"`
}

// NewBase stamps a new event for aggregateID with a time-ordered v7 id.
func NewBase(aggregateID string) Base {
	return Base{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Timestamp: time.Now().UTC(),
		Aggregate: aggregateID,
	}
}

func (e Base) EventID() string       { return e.ID }
func (e Base) OccurredAt() time.Time { return e.Timestamp }
func (e Base) AggregateID() string   { return e.Aggregate }
