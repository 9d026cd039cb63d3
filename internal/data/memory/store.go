// Package memory is an in-process implementation of the listing persistence
// ports. Its commit enforces the same one-live-listing-per-item rule and
// version check as the Postgres schema, so it backs fixtures and tests.
package memory

import (
	"context"
	"sync"

	"go-marketplace/internal/domain"
	"go-marketplace/internal/domain/event"
)

// Store is the shared state behind the memory repositories.
type Store struct {
	mu         sync.RWMutex
	listings   map[domain.ListingID]domain.ListingSnapshot
	items      map[domain.ItemID]domain.SellerID
	categories map[domain.CategoryID]*domain.Category
	published  []event.Event
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		listings:   make(map[domain.ListingID]domain.ListingSnapshot),
		items:      make(map[domain.ItemID]domain.SellerID),
		categories: make(map[domain.CategoryID]*domain.Category),
	}
}

// AddItem registers an item owned by seller.
func (s *Store) AddItem(item domain.ItemID, seller domain.SellerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item] = seller
}

// Events returns every event committed so far, in commit order.
func (s *Store) Events() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]event.Event(nil), s.published...)
}

// write is one pending listing change.
type write struct {
	listing  *domain.Listing
	snapshot domain.ListingSnapshot
	expected int64
}

// tx collects the writes of one unit of work.
type tx struct {
	writes     []write
	aggregates []domain.AggregateRoot
}

type txKey struct{}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// staged returns the latest pending snapshot for id.
func (t *tx) staged(id domain.ListingID) (domain.ListingSnapshot, bool) {
	for i := len(t.writes) - 1; i >= 0; i-- {
		if t.writes[i].snapshot.ID == id {
			return t.writes[i].snapshot, true
		}
	}
	return domain.ListingSnapshot{}, false
}

// checkLocked validates w against the committed state. Callers hold s.mu.
func (s *Store) checkLocked(w write) error {
	current, exists := s.listings[w.snapshot.ID]
	switch {
	case w.expected == 0 && exists:
		return domain.ErrConcurrentModification
	case w.expected > 0 && (!exists || current.Version != w.expected):
		return domain.ErrConcurrentModification
	}

	if w.snapshot.DeletedAt != nil {
		return nil
	}
	for id, other := range s.listings {
		if id != w.snapshot.ID && other.ItemID == w.snapshot.ItemID && other.DeletedAt == nil {
			return domain.ErrDuplicateActiveListing
		}
	}
	return nil
}

// applyLocked stores w and returns the new version. Callers hold s.mu.
func (s *Store) applyLocked(w write) int64 {
	snapshot := w.snapshot
	snapshot.Version = w.expected + 1
	if current, exists := s.listings[snapshot.ID]; exists {
		// view counts move independently of the version
		snapshot.ViewCount = current.ViewCount
	}
	s.listings[snapshot.ID] = snapshot
	return snapshot.Version
}

// commit checks every write before applying any of them.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range t.writes {
		if err := s.checkLocked(w); err != nil {
			return err
		}
	}

	for _, w := range t.writes {
		w.listing.SetVersion(s.applyLocked(w))
	}
	for _, a := range t.aggregates {
		s.published = append(s.published, a.Events()...)
	}
	return nil
}
