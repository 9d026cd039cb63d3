package data

import (
	"database/sql"
	"fmt"
	"time"

	"go-marketplace/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const listingsTable = "listings"

// pgListing is a row of the listings table. The generated location and
// search_vector columns are never written.
type pgListing struct {
	ID         uuid.UUID `db:"id"          goqu:"skipupdate"`
	ItemID     uuid.UUID `db:"item_id"     goqu:"skipupdate"`
	SellerID   uuid.UUID `db:"seller_id"   goqu:"skipupdate"`
	CategoryID uuid.UUID `db:"category_id"`

	Title       string  `db:"title"`
	Description string  `db:"description"`
	Latitude    float64 `db:"latitude"`
	Longitude   float64 `db:"longitude"`
	ListingType string  `db:"listing_type"`
	Status      string  `db:"status"`

	PriceAmount   decimal.Decimal `db:"price_amount"`
	PriceCurrency string          `db:"price_currency"`

	AuctionStartingPrice   decimal.NullDecimal `db:"auction_starting_price"`
	AuctionReservePrice    decimal.NullDecimal `db:"auction_reserve_price"`
	AuctionBuyNowPrice     decimal.NullDecimal `db:"auction_buy_now_price"`
	AuctionMaxPrice        decimal.NullDecimal `db:"auction_max_price"`
	AuctionCurrency        sql.NullString      `db:"auction_currency"`
	AuctionDurationSeconds sql.NullInt64       `db:"auction_duration_seconds"`
	AuctionMinIncrement    decimal.NullDecimal `db:"auction_min_increment"`
	AuctionAutoBid         sql.NullBool        `db:"auction_auto_bid"`

	ViewCount int64 `db:"view_count" goqu:"skipupdate"`
	Version   int64 `db:"version"`

	CreatedAt   time.Time    `db:"created_at" goqu:"skipupdate"`
	UpdatedAt   time.Time    `db:"updated_at"`
	ExpiresAt   sql.NullTime `db:"expires_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
	DeletedAt   sql.NullTime `db:"deleted_at"`
}

func listingToPg(l *domain.Listing) pgListing {
	s := l.Snapshot()
	row := pgListing{
		ID:            uuid.UUID(s.ID),
		ItemID:        uuid.UUID(s.ItemID),
		SellerID:      uuid.UUID(s.SellerID),
		CategoryID:    uuid.UUID(s.CategoryID),
		Title:         s.Title,
		Description:   s.Description,
		Latitude:      s.Location.Latitude(),
		Longitude:     s.Location.Longitude(),
		ListingType:   s.Type.String(),
		Status:        s.Status.String(),
		PriceAmount:   s.Price.Amount(),
		PriceCurrency: s.Price.Currency(),
		ViewCount:     s.ViewCount,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		ExpiresAt:     nullTime(s.ExpiresAt),
		CompletedAt:   nullTime(s.CompletedAt),
		DeletedAt:     nullTime(s.DeletedAt),
	}

	if s.Auction != nil {
		a := s.Auction.State()
		row.AuctionStartingPrice = nullDecimal(&a.StartingPrice)
		row.AuctionReservePrice = nullDecimal(a.ReservePrice)
		row.AuctionBuyNowPrice = nullDecimal(a.BuyNowPrice)
		row.AuctionMaxPrice = nullDecimal(a.MaxPrice)
		row.AuctionCurrency = sql.NullString{String: a.StartingPrice.Currency(), Valid: true}
		row.AuctionDurationSeconds = sql.NullInt64{Int64: int64(a.Duration / time.Second), Valid: true}
		row.AuctionMinIncrement = nullDecimal(&a.MinimumBidIncrement)
		row.AuctionAutoBid = sql.NullBool{Bool: a.AutoBidEnabled, Valid: true}
	}

	return row
}

// ToDomain rebuilds the aggregate from the row.
func (r pgListing) ToDomain() (*domain.Listing, error) {
	location, err := domain.NewLocation(r.Latitude, r.Longitude)
	if err != nil {
		return nil, fmt.Errorf("could not convert listing %s location: %w", r.ID, err)
	}
	price, err := domain.NewMoney(r.PriceAmount, r.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("could not convert listing %s price: %w", r.ID, err)
	}
	listingType, err := domain.ParseListingType(r.ListingType)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseListingStatus(r.Status)
	if err != nil {
		return nil, err
	}

	var auction *domain.AuctionSettings
	if r.AuctionDurationSeconds.Valid {
		settings, err := r.auctionSettings()
		if err != nil {
			return nil, fmt.Errorf("could not convert listing %s auction settings: %w", r.ID, err)
		}
		auction = &settings
	}

	return domain.ReconstructListing(domain.ListingSnapshot{
		ID:          domain.ListingID(r.ID),
		ItemID:      domain.ItemID(r.ItemID),
		SellerID:    domain.SellerID(r.SellerID),
		CategoryID:  domain.CategoryID(r.CategoryID),
		Title:       r.Title,
		Description: r.Description,
		Location:    location,
		Type:        listingType,
		Status:      status,
		Price:       price,
		Auction:     auction,
		ViewCount:   r.ViewCount,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ExpiresAt:   timePtr(r.ExpiresAt),
		CompletedAt: timePtr(r.CompletedAt),
		DeletedAt:   timePtr(r.DeletedAt),
	})
}

func (r pgListing) auctionSettings() (domain.AuctionSettings, error) {
	currency := r.AuctionCurrency.String
	money := func(d decimal.NullDecimal) (*domain.Money, error) {
		if !d.Valid {
			return nil, nil
		}
		m, err := domain.NewMoney(d.Decimal, currency)
		if err != nil {
			return nil, err
		}
		return &m, nil
	}

	starting, err := money(r.AuctionStartingPrice)
	if err != nil {
		return domain.AuctionSettings{}, err
	}
	reserve, err := money(r.AuctionReservePrice)
	if err != nil {
		return domain.AuctionSettings{}, err
	}
	buyNow, err := money(r.AuctionBuyNowPrice)
	if err != nil {
		return domain.AuctionSettings{}, err
	}
	maxPrice, err := money(r.AuctionMaxPrice)
	if err != nil {
		return domain.AuctionSettings{}, err
	}
	increment, err := money(r.AuctionMinIncrement)
	if err != nil {
		return domain.AuctionSettings{}, err
	}

	return domain.RestoreAuctionSettings(domain.AuctionSettingsState{
		StartingPrice:       lo.FromPtrOr(starting, domain.ZeroMoney(currency)),
		ReservePrice:        reserve,
		BuyNowPrice:         buyNow,
		MaxPrice:            maxPrice,
		Duration:            time.Duration(r.AuctionDurationSeconds.Int64) * time.Second,
		MinimumBidIncrement: lo.FromPtrOr(increment, domain.ZeroMoney(currency)),
		AutoBidEnabled:      r.AuctionAutoBid.Bool,
	}), nil
}

func pgListingsToDomain(rows []pgListing) ([]*domain.Listing, error) {
	listings := make([]*domain.Listing, 0, len(rows))
	for _, row := range rows {
		l, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func nullDecimal(m *domain.Money) decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: m.Amount(), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
