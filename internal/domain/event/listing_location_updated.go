package event

var _ Event = ListingLocationUpdated{}

// ListingLocationUpdated is raised when a seller moves an active listing.
type ListingLocationUpdated struct {
	Base
	SellerID  string  `json:"seller_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewListingLocationUpdated(listingID, sellerID string, latitude, longitude float64) ListingLocationUpdated {
	return ListingLocationUpdated{
		Base:      NewBase(listingID),
		SellerID:  sellerID,
		Latitude:  latitude,
		Longitude: longitude,
	}
}

func (e ListingLocationUpdated) EventName() string {
	return ListingLocationUpdatedName
}
