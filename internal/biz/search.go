package biz

import (
	"context"
	"time"

	"go-marketplace/internal/domain"
	"go-marketplace/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// SearchUsecase is the listing query engine. It reads through the
// searcher and never joins a write transaction.
type SearchUsecase struct {
	searcher   domain.ListingSearcher
	categories domain.CategoryRepository
	metrics    *metrics.Metrics
	log        *log.Helper
}

// NewSearchUsecase creates a new SearchUsecase.
func NewSearchUsecase(
	searcher domain.ListingSearcher,
	categories domain.CategoryRepository,
	m *metrics.Metrics,
	logger log.Logger,
) *SearchUsecase {
	return &SearchUsecase{
		searcher:   searcher,
		categories: categories,
		metrics:    m,
		log:        log.NewHelper(logger),
	}
}

// Search validates p, expands the category filter to its subtree and runs
// the query.
func (uc *SearchUsecase) Search(ctx context.Context, p domain.SearchParams) (*domain.SearchResult, error) {
	criteria, err := domain.NewSearchCriteria(p)
	if err != nil {
		return nil, err
	}

	if criteria.CategoryID != nil {
		ids, err := uc.categories.DescendantIDs(ctx, *criteria.CategoryID)
		if err != nil {
			return nil, err
		}
		criteria.CategoryIDs = ids
	}

	start := time.Now()
	result, err := uc.searcher.Search(ctx, criteria)
	uc.metrics.ObserveSearch(criteria.IsSpatial(), time.Since(start))
	if err != nil {
		uc.log.WithContext(ctx).Errorf("Search failed: %v", err)
		return nil, err
	}

	return result, nil
}
