package eventbus

import (
	"context"
	"testing"
	"time"

	"go-marketplace/internal/domain/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/suite"
)

type EventBusTestSuite struct {
	suite.Suite
	sut    *EventBus
	logger watermill.LoggerAdapter
}

func TestEventBusTestSuite(t *testing.T) {
	suite.Run(t, new(EventBusTestSuite))
}

func (s *EventBusTestSuite) SetupTest() {
	s.logger = watermill.NopLogger{}
	s.sut = NewEventBus(s.logger)
}

func (s *EventBusTestSuite) TearDownTest() {
	if s.sut != nil {
		s.sut.Close()
	}
}

func newCreatedEvent(listingID string) event.ListingCreated {
	return event.NewListingCreated(event.ListingCreatedParams{
		ListingID:   listingID,
		SellerID:    "seller-1",
		ItemID:      "item-1",
		CategoryID:  "category-1",
		ListingType: "fixed_price",
		Title:       "Road bike",
		Price:       "250.00",
		Currency:    "USD",
		Latitude:    40.7128,
		Longitude:   -74.0060,
	})
}

func (s *EventBusTestSuite) TestPublish() {
	// Arrange
	ctx := context.Background()
	evt := newCreatedEvent("listing-1")

	// Act
	err := s.sut.Publish(ctx, evt)

	// Assert
	s.NoError(err)
}

func (s *EventBusTestSuite) TestPublishAll() {
	// Arrange
	ctx := context.Background()
	events := []event.Event{
		newCreatedEvent("listing-1"),
		event.NewListingExpired("listing-1", "seller-1", time.Now()),
	}

	// Act
	err := s.sut.PublishAll(ctx, events)

	// Assert
	s.NoError(err)
}

func (s *EventBusTestSuite) TestEventToMessage() {
	// Arrange
	evt := newCreatedEvent("listing-1")

	// Act
	msg, err := EventToMessage(evt)

	// Assert
	s.NoError(err)
	s.NotNil(msg)
	s.Equal(evt.EventID(), msg.UUID)
	s.Equal("listing.created", msg.Metadata.Get("event_name"))
	s.Equal("listing-1", msg.Metadata.Get("aggregate_id"))
}

func (s *EventBusTestSuite) TestMessageToEnvelope() {
	// Arrange
	evt := newCreatedEvent("listing-1")
	msg, err := EventToMessage(evt)
	s.Require().NoError(err)

	// Act
	envelope, err := MessageToEnvelope(msg)

	// Assert
	s.NoError(err)
	s.NotNil(envelope)
	s.Equal(evt.EventID(), envelope.EventID)
	s.Equal("listing.created", envelope.EventName)
	s.Equal("listing-1", envelope.AggregateID)

	var payload event.ListingCreated
	s.Require().NoError(envelope.DecodePayload(&payload))
	s.Equal("Road bike", payload.Title)
	s.Equal("250.00", payload.Price)
}

func (s *EventBusTestSuite) TestMessageToEnvelope_InvalidPayload() {
	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))

	_, err := MessageToEnvelope(msg)

	s.Error(err)
}

func (s *EventBusTestSuite) TestPublishAndSubscribe() {
	// Arrange
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages, err := s.sut.Subscriber().Subscribe(ctx, ListingEventsTopic)
	s.Require().NoError(err)
	evt := newCreatedEvent("listing-2")

	// Act
	err = s.sut.Publish(ctx, evt)
	s.Require().NoError(err)

	// Assert
	select {
	case msg := <-messages:
		envelope, err := MessageToEnvelope(msg)
		s.NoError(err)
		s.Equal("listing.created", envelope.EventName)
		s.Equal("listing-2", envelope.AggregateID)
		msg.Ack()
	case <-ctx.Done():
		s.Fail("timeout waiting for message")
	}
}
