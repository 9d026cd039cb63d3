package data

import (
	"context"
	"encoding/json"
	"time"

	"go-marketplace/internal/conf"
	"go-marketplace/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	listingCachePrefix     = "listing:"
	defaultListingCacheTTL = 10 * time.Minute
)

// ListingCache defines the interface for listing caching operations.
// Implementations should handle cache misses gracefully by returning nil, nil.
type ListingCache interface {
	// Get retrieves a listing from cache by id.
	// Returns nil, nil if the listing is not in cache (cache miss).
	Get(ctx context.Context, id domain.ListingID) (*domain.Listing, error)

	// Set stores a listing in the cache.
	Set(ctx context.Context, l *domain.Listing) error

	// Invalidate removes a listing from the cache.
	Invalidate(ctx context.Context, id domain.ListingID) error
}

// Compile-time interface checks
var (
	_ ListingCache = (*RedisListingCache)(nil)
	_ ListingCache = (*noopListingCache)(nil)
)

// RedisListingCache implements ListingCache using Redis.
type RedisListingCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *log.Helper
}

// NewRedisListingCache creates a new Redis-based listing cache.
// Returns a no-op cache if Redis is not available.
func NewRedisListingCache(data *Data, c *conf.Data, logger log.Logger) ListingCache {
	if data.rdb == nil {
		return &noopListingCache{}
	}

	ttl := c.GetCache().GetListingTtl()
	if ttl <= 0 {
		ttl = defaultListingCacheTTL
	}
	return &RedisListingCache{
		rdb: data.rdb,
		ttl: ttl,
		log: log.NewHelper(logger),
	}
}

func (c *RedisListingCache) cacheKey(id domain.ListingID) string {
	return listingCachePrefix + id.String()
}

// Get retrieves a listing from Redis cache.
func (c *RedisListingCache) Get(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	data, err := c.rdb.Get(ctx, c.cacheKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		c.log.WithContext(ctx).Warnf("Failed to get listing from cache: %v", err)
		return nil, nil // Treat errors as cache miss
	}

	var cached cachedListing
	if err := json.Unmarshal(data, &cached); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to unmarshal cached listing: %v", err)
		return nil, nil
	}

	l, err := cached.toPg().ToDomain()
	if err != nil {
		c.log.WithContext(ctx).Warnf("Failed to rebuild cached listing %s: %v", id, err)
		return nil, nil
	}
	return l, nil
}

// Set stores a listing in Redis cache.
func (c *RedisListingCache) Set(ctx context.Context, l *domain.Listing) error {
	data, err := json.Marshal(cachedFromPg(listingToPg(l)))
	if err != nil {
		c.log.WithContext(ctx).Warnf("Failed to marshal listing for cache: %v", err)
		return nil // Don't fail the operation due to cache errors
	}

	if err := c.rdb.Set(ctx, c.cacheKey(l.ID()), data, c.ttl).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to cache listing: %v", err)
	}

	return nil
}

// Invalidate removes a listing from Redis cache.
func (c *RedisListingCache) Invalidate(ctx context.Context, id domain.ListingID) error {
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to invalidate listing cache: %v", err)
	}
	return nil
}

// noopListingCache is a no-op implementation when Redis is not available.
type noopListingCache struct{}

func (c *noopListingCache) Get(context.Context, domain.ListingID) (*domain.Listing, error) {
	return nil, nil
}

func (c *noopListingCache) Set(context.Context, *domain.Listing) error {
	return nil
}

func (c *noopListingCache) Invalidate(context.Context, domain.ListingID) error {
	return nil
}

// cachedListing is the serialization format for cached listings.
type cachedListing struct {
	ID            uuid.UUID       `json:"id"`
	ItemID        uuid.UUID       `json:"item_id"`
	SellerID      uuid.UUID       `json:"seller_id"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	ListingType   string          `json:"listing_type"`
	Status        string          `json:"status"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency"`
	Auction       *cachedAuction  `json:"auction,omitempty"`
	ViewCount     int64           `json:"view_count"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

type cachedAuction struct {
	StartingPrice   decimal.NullDecimal `json:"starting_price"`
	ReservePrice    decimal.NullDecimal `json:"reserve_price"`
	BuyNowPrice     decimal.NullDecimal `json:"buy_now_price"`
	MaxPrice        decimal.NullDecimal `json:"max_price"`
	Currency        string              `json:"currency"`
	DurationSeconds int64               `json:"duration_seconds"`
	MinIncrement    decimal.NullDecimal `json:"min_increment"`
	AutoBid         bool                `json:"auto_bid"`
}

func cachedFromPg(r pgListing) cachedListing {
	c := cachedListing{
		ID:            r.ID,
		ItemID:        r.ItemID,
		SellerID:      r.SellerID,
		CategoryID:    r.CategoryID,
		Title:         r.Title,
		Description:   r.Description,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		ListingType:   r.ListingType,
		Status:        r.Status,
		PriceAmount:   r.PriceAmount,
		PriceCurrency: r.PriceCurrency,
		ViewCount:     r.ViewCount,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ExpiresAt:     timePtr(r.ExpiresAt),
		CompletedAt:   timePtr(r.CompletedAt),
		DeletedAt:     timePtr(r.DeletedAt),
	}
	if r.AuctionDurationSeconds.Valid {
		c.Auction = &cachedAuction{
			StartingPrice:   r.AuctionStartingPrice,
			ReservePrice:    r.AuctionReservePrice,
			BuyNowPrice:     r.AuctionBuyNowPrice,
			MaxPrice:        r.AuctionMaxPrice,
			Currency:        r.AuctionCurrency.String,
			DurationSeconds: r.AuctionDurationSeconds.Int64,
			MinIncrement:    r.AuctionMinIncrement,
			AutoBid:         r.AuctionAutoBid.Bool,
		}
	}
	return c
}

func (c cachedListing) toPg() pgListing {
	r := pgListing{
		ID:            c.ID,
		ItemID:        c.ItemID,
		SellerID:      c.SellerID,
		CategoryID:    c.CategoryID,
		Title:         c.Title,
		Description:   c.Description,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		ListingType:   c.ListingType,
		Status:        c.Status,
		PriceAmount:   c.PriceAmount,
		PriceCurrency: c.PriceCurrency,
		ViewCount:     c.ViewCount,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		ExpiresAt:     nullTime(c.ExpiresAt),
		CompletedAt:   nullTime(c.CompletedAt),
		DeletedAt:     nullTime(c.DeletedAt),
	}
	if a := c.Auction; a != nil {
		r.AuctionStartingPrice = a.StartingPrice
		r.AuctionReservePrice = a.ReservePrice
		r.AuctionBuyNowPrice = a.BuyNowPrice
		r.AuctionMaxPrice = a.MaxPrice
		r.AuctionCurrency.String, r.AuctionCurrency.Valid = a.Currency, true
		r.AuctionDurationSeconds.Int64, r.AuctionDurationSeconds.Valid = a.DurationSeconds, true
		r.AuctionMinIncrement = a.MinIncrement
		r.AuctionAutoBid.Bool, r.AuctionAutoBid.Valid = a.AutoBid, true
	}
	return r
}
