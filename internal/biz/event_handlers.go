package biz

import (
	"context"

	"go-marketplace/internal/domain/event"
	"go-marketplace/internal/infra/eventbus"

	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface checks
var (
	_ eventbus.EventHandler = (*LoggingEventHandler)(nil)
	_ eventbus.EventHandler = (*ExternalForwardHandler)(nil)
)

// LoggingEventHandler logs all domain events.
type LoggingEventHandler struct {
	log       *log.Helper
	eventName string
}

// NewLoggingEventHandler creates a new logging event handler.
func NewLoggingEventHandler(logger log.Logger, eventName string) *LoggingEventHandler {
	return &LoggingEventHandler{
		log:       log.NewHelper(logger),
		eventName: eventName,
	}
}

func (h *LoggingEventHandler) HandlerName() string {
	return "logging_handler_" + h.eventName
}

func (h *LoggingEventHandler) EventName() string {
	return h.eventName
}

// Handle logs the event details.
func (h *LoggingEventHandler) Handle(ctx context.Context, envelope *eventbus.EventEnvelope) error {
	logger := h.log.WithContext(ctx)

	switch envelope.EventName {
	case event.ListingCreatedName:
		var evt event.ListingCreated
		if err := envelope.DecodePayload(&evt); err != nil {
			return err
		}
		logger.Infof("[Event] Listing created: %s (%s, %s %s) by %s", evt.AggregateID(), evt.ListingType, evt.Price, evt.Currency, evt.SellerID)
	case event.ListingConvertedToAuctionName:
		var evt event.ListingConvertedToAuction
		if err := envelope.DecodePayload(&evt); err != nil {
			return err
		}
		logger.Infof("[Event] Listing converted to auction: %s (first bid %s %s, ends %s)", evt.AggregateID(), evt.FirstBid, evt.Currency, evt.ExpiresAt)
	case event.ListingPriceChangedName:
		var evt event.ListingPriceChanged
		if err := envelope.DecodePayload(&evt); err != nil {
			return err
		}
		logger.Infof("[Event] Listing repriced: %s %s -> %s %s", evt.AggregateID(), evt.OldPrice, evt.NewPrice, evt.Currency)
	case event.ListingExpiredName:
		var evt event.ListingExpired
		if err := envelope.DecodePayload(&evt); err != nil {
			return err
		}
		logger.Infof("[Event] Listing expired: %s at %s", evt.AggregateID(), evt.ExpiredAt)
	case event.ListingCompletedName:
		var evt event.ListingCompleted
		if err := envelope.DecodePayload(&evt); err != nil {
			return err
		}
		logger.Infof("[Event] Listing completed: %s for %s %s", evt.AggregateID(), evt.FinalPrice, evt.Currency)
	default:
		logger.Infof("[Event] %s: %s", envelope.EventName, envelope.AggregateID)
	}
	return nil
}

// ExternalForwardHandler republishes events for subscribers in other
// services: todo generation, notifications and the search index.
type ExternalForwardHandler struct {
	sink      eventbus.Sink
	eventName string
	log       *log.Helper
}

// NewExternalForwardHandler creates a handler forwarding eventName to sink.
func NewExternalForwardHandler(sink eventbus.Sink, eventName string, logger log.Logger) *ExternalForwardHandler {
	return &ExternalForwardHandler{
		sink:      sink,
		eventName: eventName,
		log:       log.NewHelper(logger),
	}
}

func (h *ExternalForwardHandler) HandlerName() string {
	return "external_forward_handler_" + h.eventName
}

func (h *ExternalForwardHandler) EventName() string {
	return h.eventName
}

// Handle forwards the envelope. Errors are returned so the router retries.
func (h *ExternalForwardHandler) Handle(ctx context.Context, envelope *eventbus.EventEnvelope) error {
	if err := h.sink.Forward(ctx, envelope); err != nil {
		h.log.WithContext(ctx).Warnf("Failed to forward %s for listing %s: %v", envelope.EventName, envelope.AggregateID, err)
		return err
	}
	return nil
}

// RegisterEventHandlers registers all event handlers with the router.
func RegisterEventHandlers(router *eventbus.Router, sink eventbus.Sink, logger log.Logger) {
	for _, eventName := range event.Names() {
		router.AddHandler(NewLoggingEventHandler(logger, eventName))
		router.AddHandler(NewExternalForwardHandler(sink, eventName, logger))
	}
}
