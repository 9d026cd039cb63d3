package valueobject

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	ListingID  uuid.UUID
	ItemID     uuid.UUID
	SellerID   uuid.UUID
	CategoryID uuid.UUID
)

// NewListingID returns a time-ordered (v7) identifier.
func NewListingID() ListingID { return ListingID(uuid.Must(uuid.NewV7())) }

func NewItemID() ItemID         { return ItemID(uuid.New()) }
func NewSellerID() SellerID     { return SellerID(uuid.New()) }
func NewCategoryID() CategoryID { return CategoryID(uuid.New()) }

func ParseListingID(s string) (ListingID, error) {
	u, err := parseID("listing id", s)
	return ListingID(u), err
}

func ParseItemID(s string) (ItemID, error) {
	u, err := parseID("item id", s)
	return ItemID(u), err
}

func ParseSellerID(s string) (SellerID, error) {
	u, err := parseID("seller id", s)
	return SellerID(u), err
}

func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseID("category id", s)
	return CategoryID(u), err
}

func (id ListingID) String() string  { return uuid.UUID(id).String() }
func (id ItemID) String() string     { return uuid.UUID(id).String() }
func (id SellerID) String() string   { return uuid.UUID(id).String() }
func (id CategoryID) String() string { return uuid.UUID(id).String() }

func (id ListingID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SellerID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func parseID(name, s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", ErrInvalidID, name, s)
	}
	if u == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s must not be nil", ErrInvalidID, name)
	}
	return u, nil
}
