package event

var _ Event = ListingPriceChanged{}

// ListingPriceChanged is raised when a fixed-price listing is repriced.
type ListingPriceChanged struct {
	Base
	SellerID string `json:"seller_id"`
	OldPrice string `json:"old_price"`
	NewPrice string `json:"new_price"`
	Currency string `json:"currency"`
}

func NewListingPriceChanged(listingID, sellerID, oldPrice, newPrice, currency string) ListingPriceChanged {
	return ListingPriceChanged{
		Base:     NewBase(listingID),
		SellerID: sellerID,
		OldPrice: oldPrice,
		NewPrice: newPrice,
		Currency: currency,
	}
}

func (e ListingPriceChanged) EventName() string {
	return ListingPriceChangedName
}
