package event

import "time"

var _ Event = ListingConvertedToAuction{}

// ListingConvertedToAuction is raised when the first bid turns a giveaway into a forward auction.
type ListingConvertedToAuction struct {
	Base
	SellerID  string    `json:"seller_id"`
	FirstBid  string    `json:"first_bid"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewListingConvertedToAuction(listingID, sellerID, firstBid, currency string, expiresAt time.Time) ListingConvertedToAuction {
	return ListingConvertedToAuction{
		Base:      NewBase(listingID),
		SellerID:  sellerID,
		FirstBid:  firstBid,
		Currency:  currency,
		ExpiresAt: expiresAt,
	}
}

func (e ListingConvertedToAuction) EventName() string {
	return ListingConvertedToAuctionName
}
