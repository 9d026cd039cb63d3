package eventbus

import (
	"go-marketplace/internal/conf"

	"github.com/doug-martin/goqu/v9"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is eventbus providers.
var ProviderSet = wire.NewSet(
	NewKratosLoggerAdapter,
	NewEventBus,
	NewRouter,
	NewOutboxPublisher,
	ProvideForwarder,
	ProvideSink,
)

// ProvideForwarder creates a Forwarder polling the outbox on db.
func ProvideForwarder(c *conf.Events, db *goqu.Database, eventBus *EventBus, logger log.Logger) *Forwarder {
	return NewForwarder(db, eventBus.Publisher(), NewKratosLoggerAdapter(logger),
		WithPollInterval(c.GetPollInterval()),
		WithBatchSize(c.GetBatchSize()),
	)
}

// ProvideSink connects to NATS when configured.
func ProvideSink(c *conf.Events, logger log.Logger) (Sink, func(), error) {
	conn, cleanup, err := ConnectNATS(c.GetNatsUrl(), logger)
	if err != nil {
		return nil, nil, err
	}
	return NewNATSSink(conn, c.GetSubjectPrefix()), cleanup, nil
}
