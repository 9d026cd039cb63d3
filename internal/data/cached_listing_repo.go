package data

import (
	"context"
	"time"

	"go-marketplace/internal/domain"
	"go-marketplace/pkg/metrics"
)

// Compile-time interface checks
var (
	_ domain.ListingRepository = (*CachedListingRepository)(nil)
	_ domain.ListingSearcher   = (*CachedListingSearcher)(nil)
)

// CachedListingRepository wraps the listing repository with caching capabilities.
// Writes evict the listing and every cached search page showing it twice: right
// away and once the surrounding transaction commits, so a reader racing the
// commit cannot leave a stale copy behind.
type CachedListingRepository struct {
	repo     *listingRepo
	cache    ListingCache
	searches SearchCache
}

// NewCachedListingRepository creates a new cached repository wrapper.
func NewCachedListingRepository(repo *listingRepo, cache ListingCache, searches SearchCache) domain.ListingRepository {
	return &CachedListingRepository{
		repo:     repo,
		cache:    cache,
		searches: searches,
	}
}

// Save persists a listing and evicts it from the caches.
func (r *CachedListingRepository) Save(ctx context.Context, l *domain.Listing) error {
	if err := r.repo.Save(ctx, l); err != nil {
		return err
	}

	r.evict(ctx, l.ID())
	return nil
}

// FindByID retrieves a listing, checking cache first. Reads inside a
// transaction always go to the database so the caller sees its own writes
// and the current version.
func (r *CachedListingRepository) FindByID(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	if TxFromContext(ctx) != nil {
		return r.repo.FindByID(ctx, id)
	}

	// Try cache first
	if cached, err := r.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	// Cache miss, fetch from database
	l, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, l)
	return l, nil
}

// ExistsActiveForItem is not cached to keep the duplicate check accurate.
func (r *CachedListingRepository) ExistsActiveForItem(ctx context.Context, itemID domain.ItemID) (bool, error) {
	return r.repo.ExistsActiveForItem(ctx, itemID)
}

// IncrementViewCount atomically increments the view count and invalidates the cache.
func (r *CachedListingRepository) IncrementViewCount(ctx context.Context, id domain.ListingID) error {
	if err := r.repo.IncrementViewCount(ctx, id); err != nil {
		return err
	}

	_ = r.cache.Invalidate(ctx, id)
	return nil
}

// FindDueForExpiry is a sweep query and is never cached.
func (r *CachedListingRepository) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Listing, error) {
	return r.repo.FindDueForExpiry(ctx, now, limit)
}

func (r *CachedListingRepository) evict(ctx context.Context, id domain.ListingID) {
	invalidate := func(ctx context.Context) {
		_ = r.cache.Invalidate(ctx, id)
		r.searches.InvalidateListing(ctx, id)
	}

	invalidate(ctx)
	if TxFromContext(ctx) != nil {
		AfterCommit(ctx, invalidate)
	}
}

// CachedListingSearcher serves repeated searches from the search cache.
type CachedListingSearcher struct {
	searcher *listingSearcher
	cache    SearchCache
	metrics  *metrics.Metrics
}

// NewCachedListingSearcher creates a new cached searcher wrapper.
func NewCachedListingSearcher(searcher *listingSearcher, cache SearchCache, m *metrics.Metrics) domain.ListingSearcher {
	return &CachedListingSearcher{
		searcher: searcher,
		cache:    cache,
		metrics:  m,
	}
}

// Search returns a cached page when present, otherwise runs and caches it.
func (s *CachedListingSearcher) Search(ctx context.Context, c domain.SearchCriteria) (*domain.SearchResult, error) {
	key := c.CacheKey()
	result, ok := s.cache.Get(ctx, key)
	s.metrics.CacheLookup(ok)
	if ok {
		return result, nil
	}

	result, err := s.searcher.Search(ctx, c)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}
