package biz

import (
	"context"

	"go-marketplace/internal/domain"
	"go-marketplace/internal/infra/eventbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
)

// mockItemOwnership is a testify mock of domain.ItemOwnership.
type mockItemOwnership struct {
	mock.Mock
}

func (m *mockItemOwnership) OwnerOf(ctx context.Context, itemID domain.ItemID) (domain.SellerID, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.SellerID), args.Error(1)
}

// recordingSink collects forwarded envelopes.
type recordingSink struct {
	err       error
	forwarded []string
}

func (s *recordingSink) Forward(_ context.Context, envelope *eventbus.EventEnvelope) error {
	if s.err != nil {
		return s.err
	}
	s.forwarded = append(s.forwarded, envelope.EventName)
	return nil
}

func promValue(c prometheus.Collector) float64 {
	return testutil.ToFloat64(c)
}
