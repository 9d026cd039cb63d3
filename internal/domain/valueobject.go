package domain

import (
	"go-marketplace/internal/domain/valueobject"
)

// Re-export value object types for convenience.
// This allows consumers to import from domain package directly.
type (
	Money                = valueobject.Money
	Location             = valueobject.Location
	AuctionSettings      = valueobject.AuctionSettings
	AuctionSettingsState = valueobject.AuctionSettingsState
	ListingType          = valueobject.ListingType
	ListingStatus        = valueobject.ListingStatus
	ListingID            = valueobject.ListingID
	ItemID               = valueobject.ItemID
	SellerID             = valueobject.SellerID
	CategoryID           = valueobject.CategoryID
	Title                = valueobject.Title
	Description          = valueobject.Description
)

// Re-export value object constructors.
var (
	NewMoney               = valueobject.NewMoney
	ParseMoney             = valueobject.ParseMoney
	MustMoney              = valueobject.MustMoney
	ZeroMoney              = valueobject.Zero
	FromCents              = valueobject.FromCents
	NewLocation            = valueobject.NewLocation
	MustLocation           = valueobject.MustLocation
	ForForwardAuction      = valueobject.ForForwardAuction
	ForReverseAuction      = valueobject.ForReverseAuction
	ForFreeToAuction       = valueobject.ForFreeToAuction
	RestoreAuctionSettings = valueobject.RestoreAuctionSettings
	ParseListingType       = valueobject.ParseListingType
	ParseListingStatus     = valueobject.ParseListingStatus
	NewListingID           = valueobject.NewListingID
	NewItemID              = valueobject.NewItemID
	NewSellerID            = valueobject.NewSellerID
	NewCategoryID          = valueobject.NewCategoryID
	ParseListingID         = valueobject.ParseListingID
	ParseItemID            = valueobject.ParseItemID
	ParseSellerID          = valueobject.ParseSellerID
	ParseCategoryID        = valueobject.ParseCategoryID
	NewTitle               = valueobject.NewTitle
	NewDescription         = valueobject.NewDescription
)

// Re-export value object constants.
const (
	DefaultCurrency = valueobject.DefaultCurrency

	ListingTypeFree           = valueobject.ListingTypeFree
	ListingTypeFreeToAuction  = valueobject.ListingTypeFreeToAuction
	ListingTypeForwardAuction = valueobject.ListingTypeForwardAuction
	ListingTypeReverseAuction = valueobject.ListingTypeReverseAuction
	ListingTypeFixedPrice     = valueobject.ListingTypeFixedPrice

	ListingStatusDraft     = valueobject.ListingStatusDraft
	ListingStatusActive    = valueobject.ListingStatusActive
	ListingStatusCompleted = valueobject.ListingStatusCompleted
	ListingStatusExpired   = valueobject.ListingStatusExpired
	ListingStatusCancelled = valueobject.ListingStatusCancelled
	ListingStatusSuspended = valueobject.ListingStatusSuspended
)
