package data

import (
	"context"
	"testing"
	"time"

	"go-marketplace/internal/conf"
	"go-marketplace/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListing(t *testing.T) *domain.Listing {
	t.Helper()
	l, err := domain.NewFixedPriceListing(domain.ListingDetails{
		ItemID:      domain.NewItemID(),
		SellerID:    domain.NewSellerID(),
		CategoryID:  domain.NewCategoryID(),
		Title:       "Road bike",
		Description: "Aluminium frame, 54cm",
		Location:    domain.MustLocation(52.52, 13.405),
	}, domain.MustMoney("450.00", "EUR"))
	require.NoError(t, err)
	return l
}

func pageOf(listings ...*domain.Listing) *domain.SearchResult {
	result := &domain.SearchResult{PageNumber: 1, PageSize: 20, TotalCount: len(listings)}
	for _, l := range listings {
		result.Items = append(result.Items, domain.SearchHit{Listing: l})
	}
	return result
}

func TestNewSearchCache_FallsBackToLRUWithoutRedis(t *testing.T) {
	// Act
	cache := NewSearchCache(&Data{}, &conf.Data{}, log.DefaultLogger)

	// Assert
	lruCache, ok := cache.(*lruSearchCache)
	require.True(t, ok)
	assert.Equal(t, defaultSearchCacheTTL, lruCache.ttl)
}

func TestLRUSearchCache_GetSet(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := newLRUSearchCache(10, time.Minute)
	page := pageOf(newTestListing(t))

	// Act
	_, missBefore := cache.Get(ctx, "k")
	cache.Set(ctx, "k", page)
	got, hit := cache.Get(ctx, "k")

	// Assert
	assert.False(t, missBefore)
	assert.True(t, hit)
	assert.Same(t, page, got)
}

func TestLRUSearchCache_ExpiredEntryIsMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := newLRUSearchCache(10, time.Nanosecond)
	cache.Set(ctx, "k", pageOf(newTestListing(t)))
	time.Sleep(time.Millisecond)

	// Act
	_, hit := cache.Get(ctx, "k")

	// Assert
	assert.False(t, hit)
	assert.Equal(t, 0, cache.cache.Len())
}

func TestLRUSearchCache_InvalidateListingEvictsOnlyPagesShowingIt(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := newLRUSearchCache(10, time.Minute)
	a, b := newTestListing(t), newTestListing(t)
	cache.Set(ctx, "both", pageOf(a, b))
	cache.Set(ctx, "only-b", pageOf(b))
	cache.Set(ctx, "empty", pageOf())

	// Act
	cache.InvalidateListing(ctx, a.ID())

	// Assert
	_, bothHit := cache.Get(ctx, "both")
	_, onlyBHit := cache.Get(ctx, "only-b")
	_, emptyHit := cache.Get(ctx, "empty")
	assert.False(t, bothHit)
	assert.True(t, onlyBHit)
	assert.True(t, emptyHit)
}

func TestCachedListing_RoundTrip(t *testing.T) {
	// Arrange
	reserve := domain.MustMoney("150.00", "USD")
	l, err := domain.NewForwardAuctionListing(domain.ListingDetails{
		ItemID:      domain.NewItemID(),
		SellerID:    domain.NewSellerID(),
		CategoryID:  domain.NewCategoryID(),
		Title:       "Watch",
		Description: "Mechanical, serviced last year",
		Location:    domain.MustLocation(-33.8688, 151.2093),
	}, domain.MustMoney("100.00", "USD"), &reserve, nil, 24*time.Hour)
	require.NoError(t, err)

	// Act
	back, err := cachedFromPg(listingToPg(l)).toPg().ToDomain()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, l.ID(), back.ID())
	assert.Equal(t, l.Type(), back.Type())
	require.NotNil(t, back.AuctionSettings())
	assert.Equal(t, l.AuctionSettings().State().ReservePrice.String(), back.AuctionSettings().State().ReservePrice.String())
	assert.Equal(t, l.AuctionSettings().State().MinimumBidIncrement.String(), back.AuctionSettings().State().MinimumBidIncrement.String())
}

func TestCachedListingSearcher_ServesFromCache(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := newLRUSearchCache(10, time.Minute)
	criteria, err := domain.NewSearchCriteria(domain.SearchParams{Text: "bike"})
	require.NoError(t, err)
	page := pageOf(newTestListing(t))
	cache.Set(ctx, criteria.CacheKey(), page)

	// nil searcher: a cache miss would panic
	searcher := NewCachedListingSearcher(nil, cache, nil)

	// Act
	got, err := searcher.Search(ctx, criteria)

	// Assert
	require.NoError(t, err)
	assert.Same(t, page, got)
}
