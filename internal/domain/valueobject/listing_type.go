package valueobject

import "fmt"

// ListingType is the closed set of ways an item can be offered.
type ListingType string

const (
	ListingTypeFree           ListingType = "free"
	ListingTypeFreeToAuction  ListingType = "free_to_auction"
	ListingTypeForwardAuction ListingType = "forward_auction"
	ListingTypeReverseAuction ListingType = "reverse_auction"
	ListingTypeFixedPrice     ListingType = "fixed_price"
)

// ListingTypes returns every listing type.
func ListingTypes() []ListingType {
	return []ListingType{
		ListingTypeFree,
		ListingTypeFreeToAuction,
		ListingTypeForwardAuction,
		ListingTypeReverseAuction,
		ListingTypeFixedPrice,
	}
}

// ParseListingType parses the wire form of a listing type.
func ParseListingType(s string) (ListingType, error) {
	t := ListingType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidListingType, s)
	}
	return t, nil
}

func (t ListingType) IsValid() bool {
	switch t {
	case ListingTypeFree, ListingTypeFreeToAuction, ListingTypeForwardAuction,
		ListingTypeReverseAuction, ListingTypeFixedPrice:
		return true
	}
	return false
}

// HasAuctionSettings reports whether listings of this type carry AuctionSettings.
func (t ListingType) HasAuctionSettings() bool {
	switch t {
	case ListingTypeFreeToAuction, ListingTypeForwardAuction, ListingTypeReverseAuction:
		return true
	case ListingTypeFree, ListingTypeFixedPrice:
		return false
	default:
		panic(fmt.Sprintf("unhandled listing type %q", string(t)))
	}
}

func (t ListingType) String() string {
	return string(t)
}
