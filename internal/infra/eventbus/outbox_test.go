package eventbus

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-marketplace/internal/domain/event"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/suite"
)

type OutboxTestSuite struct {
	suite.Suite
	sqlDB *sql.DB
	db    *goqu.Database
	sut   *OutboxPublisher
}

func TestOutboxTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxTestSuite))
}

func (s *OutboxTestSuite) SetupTest() {
	s.sqlDB, s.db = openOutboxDB(s.T())
	s.sut = NewOutboxPublisher()
}

func (s *OutboxTestSuite) TearDownTest() {
	if s.sqlDB != nil {
		s.sqlDB.Close()
	}
}

func (s *OutboxTestSuite) storedRows() []outboxRow {
	var rows []outboxRow
	s.Require().NoError(s.db.From(OutboxTable).Order(goqu.I("created_at").Asc()).ScanStructs(&rows))
	return rows
}

func (s *OutboxTestSuite) TestPublishInTx_SingleEvent() {
	// Arrange
	ctx := context.Background()
	tx, err := s.db.Begin()
	s.Require().NoError(err)
	events := []event.Event{
		event.NewListingRestored("listing-1", "seller-1"),
	}

	// Act
	err = s.sut.PublishInTx(ctx, tx, events)
	s.Require().NoError(err)
	err = tx.Commit()
	s.Require().NoError(err)

	// Assert
	rows := s.storedRows()
	s.Len(rows, 1)
	s.NotEmpty(rows[0].UUID)
	s.NotEmpty(rows[0].Payload)
	s.Equal("listing.restored", rows[0].EventName)
	s.Equal("listing-1", rows[0].AggregateID)
}

func (s *OutboxTestSuite) TestPublishInTx_MultipleEvents() {
	// Arrange
	ctx := context.Background()
	tx, err := s.db.Begin()
	s.Require().NoError(err)
	events := []event.Event{
		event.NewListingLocationUpdated("listing-1", "seller-1", 40.7, -74.0),
		event.NewListingSoftDeleted("listing-1", "seller-1", time.Now()),
		event.NewListingRestored("listing-1", "seller-1"),
	}

	// Act
	err = s.sut.PublishInTx(ctx, tx, events)
	s.Require().NoError(err)
	err = tx.Commit()
	s.Require().NoError(err)

	// Assert
	s.Equal(int64(3), countOutbox(s.T(), s.db))
}

func (s *OutboxTestSuite) TestPublishInTx_RollbackDiscardsEvents() {
	// Arrange
	ctx := context.Background()
	tx, err := s.db.Begin()
	s.Require().NoError(err)
	events := []event.Event{
		event.NewListingRestored("listing-1", "seller-1"),
	}

	// Act
	err = s.sut.PublishInTx(ctx, tx, events)
	s.Require().NoError(err)
	err = tx.Rollback()
	s.Require().NoError(err)

	// Assert
	s.Equal(int64(0), countOutbox(s.T(), s.db))
}

func (s *OutboxTestSuite) TestPublishInTx_EmptyEvents() {
	// Arrange
	ctx := context.Background()
	tx, err := s.db.Begin()
	s.Require().NoError(err)

	// Act
	err = s.sut.PublishInTx(ctx, tx, []event.Event{})
	s.Require().NoError(err)
	err = tx.Commit()
	s.Require().NoError(err)

	// Assert
	s.Equal(int64(0), countOutbox(s.T(), s.db))
}

func (s *OutboxTestSuite) TestPublishInTx_PreservesEventMetadata() {
	// Arrange
	ctx := context.Background()
	tx, err := s.db.Begin()
	s.Require().NoError(err)
	evt := event.NewListingPriceChanged("listing-9", "seller-9", "10.00", "12.50", "USD")

	// Act
	err = s.sut.PublishInTx(ctx, tx, []event.Event{evt})
	s.Require().NoError(err)
	err = tx.Commit()
	s.Require().NoError(err)

	// Assert
	rows := s.storedRows()
	s.Require().Len(rows, 1)
	s.Equal(evt.EventID(), rows[0].UUID)

	var metadata map[string]string
	s.Require().NoError(json.Unmarshal([]byte(rows[0].Metadata), &metadata))
	s.Equal("listing.price_changed", metadata["event_name"])
	s.Equal("listing-9", metadata["aggregate_id"])

	msg, err := rows[0].toMessage()
	s.Require().NoError(err)
	envelope, err := MessageToEnvelope(msg)
	s.Require().NoError(err)
	var payload event.ListingPriceChanged
	s.Require().NoError(envelope.DecodePayload(&payload))
	s.Equal("12.50", payload.NewPrice)
}
