package event

import "time"

// Compile-time interface checks
var (
	_ Event = ListingExpired{}
	_ Event = ListingCompleted{}
	_ Event = ListingSoftDeleted{}
	_ Event = ListingRestored{}
)

// ListingExpired is raised when an active listing passes its expiry.
type ListingExpired struct {
	Base
	SellerID  string    `json:"seller_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

func NewListingExpired(listingID, sellerID string, expiredAt time.Time) ListingExpired {
	return ListingExpired{
		Base:      NewBase(listingID),
		SellerID:  sellerID,
		ExpiredAt: expiredAt,
	}
}

func (e ListingExpired) EventName() string {
	return ListingExpiredName
}

// ListingCompleted is raised when a listing is sold or given away.
type ListingCompleted struct {
	Base
	SellerID    string    `json:"seller_id"`
	FinalPrice  string    `json:"final_price"`
	Currency    string    `json:"currency"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewListingCompleted(listingID, sellerID, finalPrice, currency string, completedAt time.Time) ListingCompleted {
	return ListingCompleted{
		Base:        NewBase(listingID),
		SellerID:    sellerID,
		FinalPrice:  finalPrice,
		Currency:    currency,
		CompletedAt: completedAt,
	}
}

func (e ListingCompleted) EventName() string {
	return ListingCompletedName
}

// ListingSoftDeleted is raised when a listing is hidden by its seller.
type ListingSoftDeleted struct {
	Base
	SellerID  string    `json:"seller_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func NewListingSoftDeleted(listingID, sellerID string, deletedAt time.Time) ListingSoftDeleted {
	return ListingSoftDeleted{
		Base:      NewBase(listingID),
		SellerID:  sellerID,
		DeletedAt: deletedAt,
	}
}

func (e ListingSoftDeleted) EventName() string {
	return ListingSoftDeletedName
}

// ListingRestored is raised when a soft-deleted listing becomes active again.
type ListingRestored struct {
	Base
	SellerID string `json:"seller_id"`
}

func NewListingRestored(listingID, sellerID string) ListingRestored {
	return ListingRestored{
		Base:     NewBase(listingID),
		SellerID: sellerID,
	}
}

func (e ListingRestored) EventName() string {
	return ListingRestoredName
}
