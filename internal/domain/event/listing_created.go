package event

import "time"

// Compile-time interface check
var _ Event = ListingCreated{}

// ListingCreated is raised by every listing factory.
type ListingCreated struct {
	Base
	SellerID    string     `json:"seller_id"`
	ItemID      string     `json:"item_id"`
	CategoryID  string     `json:"category_id"`
	ListingType string     `json:"listing_type"`
	Title       string     `json:"title"`
	Price       string     `json:"price"`
	Currency    string     `json:"currency"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ListingCreatedParams carries the payload of a ListingCreated event.
type ListingCreatedParams struct {
	ListingID   string
	SellerID    string
	ItemID      string
	CategoryID  string
	ListingType string
	Title       string
	Price       string
	Currency    string
	Latitude    float64
	Longitude   float64
	ExpiresAt   *time.Time
}

// NewListingCreated creates a new ListingCreated event.
func NewListingCreated(p ListingCreatedParams) ListingCreated {
	return ListingCreated{
		Base:        NewBase(p.ListingID),
		SellerID:    p.SellerID,
		ItemID:      p.ItemID,
		CategoryID:  p.CategoryID,
		ListingType: p.ListingType,
		Title:       p.Title,
		Price:       p.Price,
		Currency:    p.Currency,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		ExpiresAt:   p.ExpiresAt,
	}
}

// EventName returns the event name.
func (e ListingCreated) EventName() string {
	return ListingCreatedName
}
