package memory

import (
	"context"
	"slices"
	"time"

	"go-marketplace/internal/domain"
)

// Compile-time interface check
var _ domain.ListingRepository = (*ListingRepository)(nil)

// ListingRepository implements domain.ListingRepository on a Store.
type ListingRepository struct {
	store *Store
}

// NewListingRepository creates a listing repository over store.
func NewListingRepository(store *Store) *ListingRepository {
	return &ListingRepository{store: store}
}

// Save stages the listing when ctx carries a transaction and writes it
// through otherwise. Both paths run the same constraint checks.
func (r *ListingRepository) Save(ctx context.Context, l *domain.Listing) error {
	w := write{listing: l, snapshot: l.Snapshot(), expected: l.Version()}

	r.store.mu.RLock()
	err := r.store.checkLocked(w)
	r.store.mu.RUnlock()
	if err != nil {
		return err
	}

	t := txFromContext(ctx)
	if t == nil {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
		if err := r.store.checkLocked(w); err != nil {
			return err
		}
		l.SetVersion(r.store.applyLocked(w))
		r.store.published = append(r.store.published, l.Events()...)
		l.ClearEvents()
		return nil
	}

	t.stage(w, l)
	return nil
}

func (t *tx) stage(w write, l *domain.Listing) {
	for i := range t.writes {
		if t.writes[i].snapshot.ID == w.snapshot.ID {
			t.writes[i].snapshot = w.snapshot
			t.writes[i].listing = l
			break
		}
	}
	if _, ok := t.staged(w.snapshot.ID); !ok {
		t.writes = append(t.writes, w)
	}
	if !slices.Contains(t.aggregates, domain.AggregateRoot(l)) {
		t.aggregates = append(t.aggregates, l)
	}
}

// FindByID returns a fresh copy of the listing, including soft-deleted ones.
// Writes staged in ctx's transaction are visible.
func (r *ListingRepository) FindByID(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	if t := txFromContext(ctx); t != nil {
		if s, ok := t.staged(id); ok {
			return domain.ReconstructListing(s)
		}
	}

	r.store.mu.RLock()
	s, ok := r.store.listings[id]
	r.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return domain.ReconstructListing(s)
}

// ExistsActiveForItem reports whether a non-deleted listing exists for the item.
func (r *ListingRepository) ExistsActiveForItem(ctx context.Context, itemID domain.ItemID) (bool, error) {
	if t := txFromContext(ctx); t != nil {
		for _, w := range t.writes {
			if w.snapshot.ItemID == itemID && w.snapshot.DeletedAt == nil {
				return true, nil
			}
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, s := range r.store.listings {
		if s.ItemID == itemID && s.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

// IncrementViewCount bumps the committed counter without touching version.
func (r *ListingRepository) IncrementViewCount(_ context.Context, id domain.ListingID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.listings[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	s.ViewCount++
	r.store.listings[id] = s
	return nil
}

// FindDueForExpiry returns active listings whose expiry has passed, oldest first.
func (r *ListingRepository) FindDueForExpiry(_ context.Context, now time.Time, limit int) ([]*domain.Listing, error) {
	r.store.mu.RLock()
	var due []domain.ListingSnapshot
	for _, s := range r.store.listings {
		if s.Status == domain.ListingStatusActive && s.DeletedAt == nil && s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
			due = append(due, s)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(due, func(a, b domain.ListingSnapshot) int {
		return a.ExpiresAt.Compare(*b.ExpiresAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	listings := make([]*domain.Listing, 0, len(due))
	for _, s := range due {
		l, err := domain.ReconstructListing(s)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}
