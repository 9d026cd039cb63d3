package service

import (
	"fmt"
	"regexp"
	"time"

	"go-marketplace/internal/biz"
	"go-marketplace/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// isUUID checks a non-empty string field holds a UUID.
var isUUID = validation.By(func(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("must be a valid UUID")
	}
	return nil
})

// isDuration checks a non-empty string field holds a Go duration ("168h").
var isDuration = validation.By(func(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration such as 72h")
	}
	return nil
})

// MoneyDTO is an amount with a currency. Currency defaults to USD.
type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

func (m MoneyDTO) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Amount, validation.Required),
		validation.Field(&m.Currency, validation.Match(currencyPattern).Error("must be an ISO 4217 code")),
	)
}

func (m MoneyDTO) toDomain() (domain.Money, error) {
	currency := m.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return domain.ParseMoney(m.Amount, currency)
}

func optionalMoney(m *MoneyDTO) (*domain.Money, error) {
	if m == nil {
		return nil, nil
	}
	money, err := m.toDomain()
	if err != nil {
		return nil, err
	}
	return &money, nil
}

func moneyFromDomain(m domain.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount().StringFixed(2), Currency: m.Currency()}
}

func optionalMoneyFromDomain(m *domain.Money) *MoneyDTO {
	if m == nil {
		return nil
	}
	return lo.ToPtr(moneyFromDomain(*m))
}

type LocationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l LocationDTO) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&l.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (l LocationDTO) toDomain() (domain.Location, error) {
	return domain.NewLocation(l.Latitude, l.Longitude)
}

// CreateListingRequest is the body of every create endpoint. The pricing
// fields required depend on the listing type.
type CreateListingRequest struct {
	ItemID        string       `json:"itemId"`
	CategoryID    string       `json:"categoryId"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Location      *LocationDTO `json:"location"`
	Duration      string       `json:"duration,omitempty"`
	Price         *MoneyDTO    `json:"price,omitempty"`
	StartingPrice *MoneyDTO    `json:"startingPrice,omitempty"`
	ReservePrice  *MoneyDTO    `json:"reservePrice,omitempty"`
	BuyNowPrice   *MoneyDTO    `json:"buyNowPrice,omitempty"`
	MaxPrice      *MoneyDTO    `json:"maxPrice,omitempty"`
}

func (r CreateListingRequest) validate(t domain.ListingType) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemID, validation.Required, isUUID),
		validation.Field(&r.CategoryID, validation.Required, isUUID),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Location, validation.Required),
		validation.Field(&r.Duration, validation.When(t.HasAuctionSettings(), validation.Required), isDuration),
		validation.Field(&r.Price, validation.When(t == domain.ListingTypeFixedPrice, validation.Required)),
		validation.Field(&r.StartingPrice, validation.When(t == domain.ListingTypeForwardAuction, validation.Required)),
		validation.Field(&r.MaxPrice, validation.When(t == domain.ListingTypeReverseAuction, validation.Required)),
		validation.Field(&r.ReservePrice),
		validation.Field(&r.BuyNowPrice),
	)
}

// command builds the shared part of a create command. It runs after validate.
func (r CreateListingRequest) command(requester domain.SellerID) (biz.CreateListingCommand, error) {
	itemID, err := domain.ParseItemID(r.ItemID)
	if err != nil {
		return biz.CreateListingCommand{}, err
	}
	categoryID, err := domain.ParseCategoryID(r.CategoryID)
	if err != nil {
		return biz.CreateListingCommand{}, err
	}
	location, err := r.Location.toDomain()
	if err != nil {
		return biz.CreateListingCommand{}, err
	}

	return biz.CreateListingCommand{
		RequesterID: requester,
		ItemID:      itemID,
		CategoryID:  categoryID,
		Title:       r.Title,
		Description: r.Description,
		Location:    location,
	}, nil
}

func (r CreateListingRequest) duration() time.Duration {
	d, _ := time.ParseDuration(r.Duration)
	return d
}

// UpdateListingRequest changes the fields that are present.
type UpdateListingRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	CategoryID  *string      `json:"categoryId,omitempty"`
	Location    *LocationDTO `json:"location,omitempty"`
	Price       *MoneyDTO    `json:"price,omitempty"`
}

func (r UpdateListingRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.CategoryID == nil && r.Location == nil && r.Price == nil {
		return validation.Errors{"body": fmt.Errorf("at least one field must be set")}
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Description, validation.NilOrNotEmpty),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty, isUUID),
		validation.Field(&r.Location),
		validation.Field(&r.Price),
	)
}

func (r UpdateListingRequest) command(id domain.ListingID, requester domain.SellerID) (biz.UpdateListingCommand, error) {
	cmd := biz.UpdateListingCommand{
		ListingID:   id,
		RequesterID: requester,
		Title:       r.Title,
		Description: r.Description,
	}
	if r.CategoryID != nil {
		categoryID, err := domain.ParseCategoryID(*r.CategoryID)
		if err != nil {
			return cmd, err
		}
		cmd.CategoryID = &categoryID
	}
	if r.Location != nil {
		location, err := r.Location.toDomain()
		if err != nil {
			return cmd, err
		}
		cmd.Location = &location
	}
	price, err := optionalMoney(r.Price)
	if err != nil {
		return cmd, err
	}
	cmd.Price = price
	return cmd, nil
}

// ConvertListingRequest reports the first bid on a free-to-auction listing.
type ConvertListingRequest struct {
	FirstBid *MoneyDTO `json:"firstBid"`
}

func (r ConvertListingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstBid, validation.Required),
	)
}

type CreateCategoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.ParentID, validation.NilOrNotEmpty, isUUID),
	)
}

// MoveCategoryRequest re-parents a category; a null parent makes it a root.
type MoveCategoryRequest struct {
	ParentID *string `json:"parentId"`
}

func (r MoveCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ParentID, validation.NilOrNotEmpty, isUUID),
	)
}

func parseOptionalCategoryID(s *string) (*domain.CategoryID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := domain.ParseCategoryID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type AuctionResponse struct {
	StartingPrice       MoneyDTO  `json:"startingPrice"`
	ReservePrice        *MoneyDTO `json:"reservePrice,omitempty"`
	BuyNowPrice         *MoneyDTO `json:"buyNowPrice,omitempty"`
	MaxPrice            *MoneyDTO `json:"maxPrice,omitempty"`
	Duration            string    `json:"duration"`
	MinimumBidIncrement MoneyDTO  `json:"minimumBidIncrement"`
	AutoBidEnabled      bool      `json:"autoBidEnabled"`
}

type ListingResponse struct {
	ID          string           `json:"id"`
	ItemID      string           `json:"itemId"`
	SellerID    string           `json:"sellerId"`
	CategoryID  string           `json:"categoryId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Location    LocationDTO      `json:"location"`
	Type        string           `json:"type"`
	Status      string           `json:"status"`
	Price       MoneyDTO         `json:"price"`
	Auction     *AuctionResponse `json:"auction,omitempty"`
	ViewCount   int64            `json:"viewCount"`
	Version     int64            `json:"version"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	DistanceKm  *float64         `json:"distanceKm,omitempty"`
}

func listingFromDomain(l *domain.Listing) ListingResponse {
	resp := ListingResponse{
		ID:          l.ID().String(),
		ItemID:      l.ItemID().String(),
		SellerID:    l.SellerID().String(),
		CategoryID:  l.CategoryID().String(),
		Title:       l.Title().String(),
		Description: l.Description().String(),
		Location:    LocationDTO{Latitude: l.Location().Latitude(), Longitude: l.Location().Longitude()},
		Type:        l.Type().String(),
		Status:      l.Status().String(),
		Price:       moneyFromDomain(l.CurrentPrice()),
		ViewCount:   l.ViewCount(),
		Version:     l.Version(),
		CreatedAt:   l.CreatedAt(),
		UpdatedAt:   l.UpdatedAt(),
		ExpiresAt:   l.ExpiresAt(),
		CompletedAt: l.CompletedAt(),
	}
	if a := l.AuctionSettings(); a != nil {
		resp.Auction = &AuctionResponse{
			StartingPrice:       moneyFromDomain(a.StartingPrice()),
			ReservePrice:        optionalMoneyFromDomain(a.ReservePrice()),
			BuyNowPrice:         optionalMoneyFromDomain(a.BuyNowPrice()),
			MaxPrice:            optionalMoneyFromDomain(a.MaxPrice()),
			Duration:            a.Duration().String(),
			MinimumBidIncrement: moneyFromDomain(a.MinimumBidIncrement()),
			AutoBidEnabled:      a.AutoBidEnabled(),
		}
	}
	return resp
}

type SearchResponse struct {
	Items       []ListingResponse `json:"items"`
	TotalCount  int               `json:"totalCount"`
	TotalCapped bool              `json:"totalCapped"`
	PageNumber  int               `json:"pageNumber"`
	PageSize    int               `json:"pageSize"`
	HasNextPage bool              `json:"hasNextPage"`
}

func searchFromDomain(r *domain.SearchResult) SearchResponse {
	return SearchResponse{
		Items: lo.Map(r.Items, func(h domain.SearchHit, _ int) ListingResponse {
			resp := listingFromDomain(h.Listing)
			if h.DistanceKm != nil {
				resp.DistanceKm = lo.ToPtr(domain.RoundKm(*h.DistanceKm))
			}
			return resp
		}),
		TotalCount:  r.TotalCount,
		TotalCapped: r.TotalCapped,
		PageNumber:  r.PageNumber,
		PageSize:    r.PageSize,
		HasNextPage: r.HasNextPage(),
	}
}

type CategoryResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

func categoryFromDomain(c *domain.Category) CategoryResponse {
	resp := CategoryResponse{ID: c.ID().String(), Name: c.Name()}
	if p := c.ParentID(); p != nil {
		resp.ParentID = lo.ToPtr(p.String())
	}
	return resp
}
