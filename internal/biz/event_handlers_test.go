package biz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-marketplace/internal/domain/event"
	"go-marketplace/internal/infra/eventbus"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeFor(t *testing.T, e event.Event) *eventbus.EventEnvelope {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return &eventbus.EventEnvelope{
		EventID:     e.EventID(),
		EventName:   e.EventName(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Payload:     payload,
	}
}

func TestLoggingEventHandler_Handle(t *testing.T) {
	tests := []struct {
		name  string
		event event.Event
	}{
		{
			name: "created",
			event: event.NewListingCreated(event.ListingCreatedParams{
				ListingID: "l-1", SellerID: "s-1", ItemID: "i-1", ListingType: "free", Price: "0.00", Currency: "USD",
			}),
		},
		{name: "converted", event: event.NewListingConvertedToAuction("l-1", "s-1", "10.00", "USD", time.Now())},
		{name: "expired", event: event.NewListingExpired("l-1", "s-1", time.Now())},
		{name: "restored", event: event.NewListingRestored("l-1", "s-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := NewLoggingEventHandler(log.DefaultLogger, tt.event.EventName())

			// Act
			err := handler.Handle(context.Background(), envelopeFor(t, tt.event))

			// Assert
			assert.NoError(t, err)
		})
	}
}

func TestLoggingEventHandler_BadPayload(t *testing.T) {
	// Arrange
	handler := NewLoggingEventHandler(log.DefaultLogger, event.ListingCreatedName)
	envelope := &eventbus.EventEnvelope{EventName: event.ListingCreatedName, Payload: json.RawMessage(`"nope"`)}

	// Act
	err := handler.Handle(context.Background(), envelope)

	// Assert
	assert.Error(t, err)
}

func TestExternalForwardHandler_Handle(t *testing.T) {
	// Arrange
	sink := &recordingSink{}
	handler := NewExternalForwardHandler(sink, event.ListingExpiredName, log.DefaultLogger)

	// Act
	err := handler.Handle(context.Background(), envelopeFor(t, event.NewListingExpired("l-1", "s-1", time.Now())))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{event.ListingExpiredName}, sink.forwarded)
	assert.Equal(t, "external_forward_handler_listing.expired", handler.HandlerName())
}

func TestExternalForwardHandler_ReturnsSinkError(t *testing.T) {
	// Arrange
	sink := &recordingSink{err: errors.New("nats unavailable")}
	handler := NewExternalForwardHandler(sink, event.ListingExpiredName, log.DefaultLogger)

	// Act
	err := handler.Handle(context.Background(), envelopeFor(t, event.NewListingExpired("l-1", "s-1", time.Now())))

	// Assert
	assert.EqualError(t, err, "nats unavailable")
}

func TestRegisterEventHandlers(t *testing.T) {
	// Arrange
	adapter := eventbus.NewKratosLoggerAdapter(log.DefaultLogger)
	bus := eventbus.NewEventBus(adapter)
	defer bus.Close()
	router, err := eventbus.NewRouter(bus, adapter)
	require.NoError(t, err)

	// Act
	RegisterEventHandlers(router, &recordingSink{}, log.DefaultLogger)

	// Assert
	assert.Len(t, router.Handlers(), 2*len(event.Names()))
}
