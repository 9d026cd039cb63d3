package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is the NATS subject prefix listing events are republished under.
const DefaultSubjectPrefix = "listings.events"

// Sink forwards events to subscribers outside this process.
type Sink interface {
	Forward(ctx context.Context, envelope *EventEnvelope) error
}

var (
	_ Sink = (*NATSSink)(nil)
	_ Sink = (*noopSink)(nil)
)

// NATSSink republishes envelopes to NATS, one subject per event name.
type NATSSink struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSSink creates a sink publishing on conn. Returns a no-op sink if conn is nil.
func NewNATSSink(conn *nats.Conn, prefix string) Sink {
	if conn == nil {
		return &noopSink{}
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSSink{conn: conn, prefix: prefix}
}

// Subject returns the subject an event name is published on.
func Subject(prefix, eventName string) string {
	return prefix + "." + eventName
}

// Forward publishes the envelope. The event id goes into the Nats-Msg-Id
// header so JetStream consumers can de-duplicate redeliveries.
func (s *NATSSink) Forward(ctx context.Context, envelope *EventEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("could not marshal envelope: %w", err)
	}

	msg := nats.NewMsg(Subject(s.prefix, envelope.EventName))
	msg.Header.Set(nats.MsgIdHdr, envelope.EventID)
	msg.Data = data

	if err := s.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("could not publish %s to nats: %w", envelope.EventName, err)
	}
	return nil
}

type noopSink struct{}

func (noopSink) Forward(context.Context, *EventEnvelope) error {
	return nil
}

// ConnectNATS connects to url. An empty url disables the fan-out and returns a nil connection.
func ConnectNATS(url string, logger log.Logger) (*nats.Conn, func(), error) {
	helper := log.NewHelper(logger)
	if url == "" {
		helper.Info("nats url not configured, external event fan-out disabled")
		return nil, func() {}, nil
	}

	conn, err := nats.Connect(url,
		nats.Name("listing-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				helper.Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			helper.Infof("nats reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to nats: %w", err)
	}

	cleanup := func() {
		if err := conn.Drain(); err != nil {
			helper.Errorf("nats drain failed: %v", err)
		}
	}
	return conn, cleanup, nil
}
