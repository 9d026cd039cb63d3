package event

const (
	ListingCreatedName            = "listing.created"
	ListingConvertedToAuctionName = "listing.converted_to_auction"
	ListingLocationUpdatedName    = "listing.location_updated"
	ListingDetailsUpdatedName     = "listing.details_updated"
	ListingPriceChangedName       = "listing.price_changed"
	ListingExpiredName            = "listing.expired"
	ListingCompletedName          = "listing.completed"
	ListingSoftDeletedName        = "listing.soft_deleted"
	ListingRestoredName           = "listing.restored"
)

// Names returns the name of every event a listing can raise.
func Names() []string {
	return []string{
		ListingCreatedName,
		ListingConvertedToAuctionName,
		ListingLocationUpdatedName,
		ListingDetailsUpdatedName,
		ListingPriceChangedName,
		ListingExpiredName,
		ListingCompletedName,
		ListingSoftDeletedName,
		ListingRestoredName,
	}
}
