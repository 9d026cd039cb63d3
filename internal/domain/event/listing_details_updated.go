package event

var _ Event = ListingDetailsUpdated{}

// ListingDetailsUpdated is raised when title, description or category change.
type ListingDetailsUpdated struct {
	Base
	SellerID   string `json:"seller_id"`
	Title      string `json:"title"`
	CategoryID string `json:"category_id"`
}

func NewListingDetailsUpdated(listingID, sellerID, title, categoryID string) ListingDetailsUpdated {
	return ListingDetailsUpdated{
		Base:       NewBase(listingID),
		SellerID:   sellerID,
		Title:      title,
		CategoryID: categoryID,
	}
}

func (e ListingDetailsUpdated) EventName() string {
	return ListingDetailsUpdatedName
}
