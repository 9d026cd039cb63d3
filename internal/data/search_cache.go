package data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-marketplace/internal/conf"
	"go-marketplace/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const (
	searchCachePrefix      = "listings:search:"
	searchIndexPrefix      = "listings:search:idx:"
	defaultSearchCacheTTL  = 5 * time.Minute
	defaultSearchCacheSize = 1000
)

// SearchCache stores search result pages keyed by SearchCriteria.CacheKey.
// Every page is indexed by the listings it contains so that a write to one
// listing evicts exactly the pages that showed it.
type SearchCache interface {
	Get(ctx context.Context, key string) (*domain.SearchResult, bool)
	Set(ctx context.Context, key string, result *domain.SearchResult)
	InvalidateListing(ctx context.Context, id domain.ListingID)
}

var (
	_ SearchCache = (*redisSearchCache)(nil)
	_ SearchCache = (*lruSearchCache)(nil)
)

// NewSearchCache returns a Redis-backed cache when Redis is reachable and an
// in-process LRU otherwise.
func NewSearchCache(data *Data, c *conf.Data, logger log.Logger) SearchCache {
	ttl := c.GetCache().GetSearchTtl()
	if ttl <= 0 {
		ttl = defaultSearchCacheTTL
	}

	if data.rdb == nil {
		size := c.GetCache().GetLruSize()
		if size <= 0 {
			size = defaultSearchCacheSize
		}
		return newLRUSearchCache(size, ttl)
	}

	return &redisSearchCache{
		rdb: data.rdb,
		ttl: ttl,
		log: log.NewHelper(logger),
	}
}

type redisSearchCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *log.Helper
}

type cachedSearchResult struct {
	Items       []cachedSearchHit `json:"items"`
	TotalCount  int               `json:"total_count"`
	TotalCapped bool              `json:"total_capped"`
	PageNumber  int               `json:"page_number"`
	PageSize    int               `json:"page_size"`
}

type cachedSearchHit struct {
	Listing    cachedListing `json:"listing"`
	DistanceKm *float64      `json:"distance_km,omitempty"`
	Rank       float64       `json:"rank"`
}

func (c *redisSearchCache) Get(ctx context.Context, key string) (*domain.SearchResult, bool) {
	raw, err := c.rdb.Get(ctx, searchCachePrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithContext(ctx).Warnf("Failed to get search page from cache: %v", err)
		}
		return nil, false
	}

	var cached cachedSearchResult
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to unmarshal cached search page: %v", err)
		return nil, false
	}

	result := &domain.SearchResult{
		Items:       make([]domain.SearchHit, 0, len(cached.Items)),
		TotalCount:  cached.TotalCount,
		TotalCapped: cached.TotalCapped,
		PageNumber:  cached.PageNumber,
		PageSize:    cached.PageSize,
	}
	for _, hit := range cached.Items {
		l, err := hit.Listing.toPg().ToDomain()
		if err != nil {
			c.log.WithContext(ctx).Warnf("Failed to rebuild cached search hit: %v", err)
			return nil, false
		}
		result.Items = append(result.Items, domain.SearchHit{Listing: l, DistanceKm: hit.DistanceKm, Rank: hit.Rank})
	}
	return result, true
}

func (c *redisSearchCache) Set(ctx context.Context, key string, result *domain.SearchResult) {
	cached := cachedSearchResult{
		Items: lo.Map(result.Items, func(h domain.SearchHit, _ int) cachedSearchHit {
			return cachedSearchHit{Listing: cachedFromPg(listingToPg(h.Listing)), DistanceKm: h.DistanceKm, Rank: h.Rank}
		}),
		TotalCount:  result.TotalCount,
		TotalCapped: result.TotalCapped,
		PageNumber:  result.PageNumber,
		PageSize:    result.PageSize,
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		c.log.WithContext(ctx).Warnf("Failed to marshal search page for cache: %v", err)
		return
	}

	pageKey := searchCachePrefix + key
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, pageKey, raw, c.ttl)
		for _, hit := range result.Items {
			idx := searchIndexPrefix + hit.Listing.ID().String()
			pipe.SAdd(ctx, idx, pageKey)
			pipe.Expire(ctx, idx, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.log.WithContext(ctx).Warnf("Failed to cache search page: %v", err)
	}
}

func (c *redisSearchCache) InvalidateListing(ctx context.Context, id domain.ListingID) {
	idx := searchIndexPrefix + id.String()
	keys, err := c.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		c.log.WithContext(ctx).Warnf("Failed to read search index for listing %s: %v", id, err)
		return
	}
	if err := c.rdb.Del(ctx, append(keys, idx)...).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to invalidate search pages for listing %s: %v", id, err)
	}
}

// searchEntry is a cached page together with the listings it references.
type searchEntry struct {
	result    *domain.SearchResult
	ids       map[domain.ListingID]struct{}
	expiresAt time.Time
}

type lruSearchCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *searchEntry]
	ttl   time.Duration
}

func newLRUSearchCache(size int, ttl time.Duration) *lruSearchCache {
	cache, err := lru.New[string, *searchEntry](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		cache, _ = lru.New[string, *searchEntry](defaultSearchCacheSize)
	}
	return &lruSearchCache{cache: cache, ttl: ttl}
}

func (c *lruSearchCache) Get(_ context.Context, key string) (*domain.SearchResult, bool) {
	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}
	return entry.result, true
}

func (c *lruSearchCache) Set(_ context.Context, key string, result *domain.SearchResult) {
	ids := make(map[domain.ListingID]struct{}, len(result.Items))
	for _, hit := range result.Items {
		ids[hit.Listing.ID()] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, &searchEntry{
		result:    result,
		ids:       ids,
		expiresAt: time.Now().Add(c.ttl),
	})
}

func (c *lruSearchCache) InvalidateListing(_ context.Context, id domain.ListingID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.cache.Keys() {
		entry, ok := c.cache.Peek(key)
		if !ok {
			continue
		}
		if _, hit := entry.ids[id]; hit {
			c.cache.Remove(key)
		}
	}
}
