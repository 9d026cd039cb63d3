package domain

import (
	"fmt"
	"time"

	"go-marketplace/internal/domain/event"
)

// FreeListingLifetime is how long a giveaway stays active.
const FreeListingLifetime = 30 * 24 * time.Hour

// Compile-time interface check
var _ AggregateRoot = (*Listing)(nil)

// Listing is the aggregate root for an item offered on the marketplace.
// It is created only through the typed factories below and mutated only
// through named transitions, each of which raises a domain event.
type Listing struct {
	id          ListingID
	itemID      ItemID
	sellerID    SellerID
	categoryID  CategoryID
	title       Title
	description Description
	location    Location
	listingType ListingType
	status      ListingStatus
	price       Money
	auction     *AuctionSettings
	viewCount   int64
	version     int64

	createdAt   time.Time
	updatedAt   time.Time
	expiresAt   *time.Time
	completedAt *time.Time
	deletedAt   *time.Time

	events []event.Event
}

// ListingDetails are the descriptive fields shared by every factory.
type ListingDetails struct {
	ItemID      ItemID
	SellerID    SellerID
	CategoryID  CategoryID
	Title       string
	Description string
	Location    Location
}

// ListingSnapshot is the flat state of a listing, used to move it across the
// persistence and cache boundaries.
type ListingSnapshot struct {
	ID          ListingID
	ItemID      ItemID
	SellerID    SellerID
	CategoryID  CategoryID
	Title       string
	Description string
	Location    Location
	Type        ListingType
	Status      ListingStatus
	Price       Money
	Auction     *AuctionSettings
	ViewCount   int64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   *time.Time
	CompletedAt *time.Time
	DeletedAt   *time.Time
}

// NewFreeListing creates a giveaway priced at zero that expires after 30 days.
func NewFreeListing(d ListingDetails) (*Listing, error) {
	expiresAt := time.Now().UTC().Add(FreeListingLifetime)
	return newListing(d, ListingTypeFree, ZeroMoney(DefaultCurrency), nil, &expiresAt)
}

// NewFreeToAuctionListing creates a giveaway that becomes a forward auction of
// the given duration when it receives its first bid. It has no expiry until then.
func NewFreeToAuctionListing(d ListingDetails, duration time.Duration) (*Listing, error) {
	settings, err := ForFreeToAuction(duration, DefaultCurrency)
	if err != nil {
		return nil, err
	}
	return newListing(d, ListingTypeFreeToAuction, ZeroMoney(DefaultCurrency), &settings, nil)
}

// NewForwardAuctionListing creates an ascending auction starting at starting.
func NewForwardAuctionListing(d ListingDetails, starting Money, reserve, buyNow *Money, duration time.Duration) (*Listing, error) {
	settings, err := ForForwardAuction(starting, reserve, buyNow, duration)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(duration)
	return newListing(d, ListingTypeForwardAuction, starting, &settings, &expiresAt)
}

// NewReverseAuctionListing creates a descending auction capped at maxPrice.
func NewReverseAuctionListing(d ListingDetails, maxPrice Money, duration time.Duration) (*Listing, error) {
	settings, err := ForReverseAuction(maxPrice, duration)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(duration)
	return newListing(d, ListingTypeReverseAuction, maxPrice, &settings, &expiresAt)
}

// NewFixedPriceListing creates a listing sold at price. It never expires on its own.
func NewFixedPriceListing(d ListingDetails, price Money) (*Listing, error) {
	if price.IsZero() {
		return nil, fmt.Errorf("%w: fixed price must be positive", ErrInvalidMoney)
	}
	return newListing(d, ListingTypeFixedPrice, price, nil, nil)
}

func newListing(d ListingDetails, t ListingType, price Money, auction *AuctionSettings, expiresAt *time.Time) (*Listing, error) {
	if d.ItemID.IsZero() || d.SellerID.IsZero() || d.CategoryID.IsZero() {
		return nil, fmt.Errorf("%w: item, seller and category are required", ErrInvalidListing)
	}

	title, err := NewTitle(d.Title)
	if err != nil {
		return nil, err
	}
	description, err := NewDescription(d.Description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &Listing{
		id:          NewListingID(),
		itemID:      d.ItemID,
		sellerID:    d.SellerID,
		categoryID:  d.CategoryID,
		title:       title,
		description: description,
		location:    d.Location,
		listingType: t,
		status:      ListingStatusActive,
		price:       price,
		auction:     auction,
		createdAt:   now,
		updatedAt:   now,
		expiresAt:   expiresAt,
		events:      make([]event.Event, 0),
	}

	l.addEvent(event.NewListingCreated(event.ListingCreatedParams{
		ListingID:   l.id.String(),
		SellerID:    l.sellerID.String(),
		ItemID:      l.itemID.String(),
		CategoryID:  l.categoryID.String(),
		ListingType: t.String(),
		Title:       title.String(),
		Price:       price.Amount().StringFixed(2),
		Currency:    price.Currency(),
		Latitude:    l.location.Latitude(),
		Longitude:   l.location.Longitude(),
		ExpiresAt:   expiresAt,
	}))
	return l, nil
}

// ReconstructListing rebuilds a listing from persisted state. No events are raised.
func ReconstructListing(s ListingSnapshot) (*Listing, error) {
	title, err := NewTitle(s.Title)
	if err != nil {
		return nil, err
	}
	description, err := NewDescription(s.Description)
	if err != nil {
		return nil, err
	}
	if !s.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidListingType, s.Type)
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, s.Status)
	}

	return &Listing{
		id:          s.ID,
		itemID:      s.ItemID,
		sellerID:    s.SellerID,
		categoryID:  s.CategoryID,
		title:       title,
		description: description,
		location:    s.Location,
		listingType: s.Type,
		status:      s.Status,
		price:       s.Price,
		auction:     s.Auction,
		viewCount:   s.ViewCount,
		version:     s.Version,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
		expiresAt:   s.ExpiresAt,
		completedAt: s.CompletedAt,
		deletedAt:   s.DeletedAt,
		events:      make([]event.Event, 0),
	}, nil
}

// Snapshot returns the flat state of the listing.
func (l *Listing) Snapshot() ListingSnapshot {
	return ListingSnapshot{
		ID:          l.id,
		ItemID:      l.itemID,
		SellerID:    l.sellerID,
		CategoryID:  l.categoryID,
		Title:       l.title.String(),
		Description: l.description.String(),
		Location:    l.location,
		Type:        l.listingType,
		Status:      l.status,
		Price:       l.price,
		Auction:     l.auction,
		ViewCount:   l.viewCount,
		Version:     l.version,
		CreatedAt:   l.createdAt,
		UpdatedAt:   l.updatedAt,
		ExpiresAt:   l.expiresAt,
		CompletedAt: l.completedAt,
		DeletedAt:   l.deletedAt,
	}
}

func (l *Listing) ID() ListingID                     { return l.id }
func (l *Listing) ItemID() ItemID                    { return l.itemID }
func (l *Listing) SellerID() SellerID                { return l.sellerID }
func (l *Listing) CategoryID() CategoryID            { return l.categoryID }
func (l *Listing) Title() Title                      { return l.title }
func (l *Listing) Description() Description          { return l.description }
func (l *Listing) Location() Location                { return l.location }
func (l *Listing) Type() ListingType                 { return l.listingType }
func (l *Listing) Status() ListingStatus             { return l.status }
func (l *Listing) CurrentPrice() Money               { return l.price }
func (l *Listing) AuctionSettings() *AuctionSettings { return l.auction }
func (l *Listing) ViewCount() int64                  { return l.viewCount }
func (l *Listing) CreatedAt() time.Time              { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time              { return l.updatedAt }
func (l *Listing) ExpiresAt() *time.Time             { return l.expiresAt }
func (l *Listing) CompletedAt() *time.Time           { return l.completedAt }
func (l *Listing) DeletedAt() *time.Time             { return l.deletedAt }

// Version returns the optimistic concurrency token. Zero means never persisted.
func (l *Listing) Version() int64 {
	return l.version
}

// SetVersion records the version assigned by the repository after a save.
func (l *Listing) SetVersion(v int64) {
	l.version = v
}

// IsDeleted reports whether the listing has been soft deleted.
func (l *Listing) IsDeleted() bool {
	return l.deletedAt != nil
}

// IsOwnedBy reports whether seller published this listing.
func (l *Listing) IsOwnedBy(seller SellerID) bool {
	return l.sellerID == seller
}

// IsDueForExpiry reports whether an active listing has passed its expiry at now.
func (l *Listing) IsDueForExpiry(now time.Time) bool {
	return l.status == ListingStatusActive && l.expiresAt != nil && !now.Before(*l.expiresAt)
}

// ConvertToForwardAuction turns an active giveaway into a forward auction when
// it receives its first bid. The auction runs for the configured duration from now.
func (l *Listing) ConvertToForwardAuction(firstBid Money) error {
	switch {
	case l.listingType == ListingTypeForwardAuction:
		return ErrAlreadyConverted
	case l.listingType != ListingTypeFreeToAuction || l.auction == nil:
		return fmt.Errorf("%w: %s listings cannot convert to an auction", ErrInvalidStateTransition, l.listingType)
	case l.status != ListingStatusActive:
		return fmt.Errorf("%w: listing is %s", ErrInvalidStateTransition, l.status)
	}
	if firstBid.Currency() != l.price.Currency() {
		return fmt.Errorf("%w: bid in %s on a %s listing", ErrCurrencyMismatch, firstBid.Currency(), l.price.Currency())
	}

	now := time.Now().UTC()
	settings := l.auction.WithStartingPrice(firstBid)
	expiresAt := now.Add(settings.Duration())

	l.listingType = ListingTypeForwardAuction
	l.price = firstBid
	l.auction = &settings
	l.expiresAt = &expiresAt
	l.updatedAt = now

	l.addEvent(event.NewListingConvertedToAuction(
		l.id.String(), l.sellerID.String(), firstBid.Amount().StringFixed(2), firstBid.Currency(), expiresAt,
	))
	return nil
}

// UpdateLocation moves an active listing.
func (l *Listing) UpdateLocation(loc Location) error {
	if err := l.requireActive("update location"); err != nil {
		return err
	}

	l.location = loc
	l.updatedAt = time.Now().UTC()
	l.addEvent(event.NewListingLocationUpdated(l.id.String(), l.sellerID.String(), loc.Latitude(), loc.Longitude()))
	return nil
}

// UpdateDetails replaces the title, description and category of an active listing.
func (l *Listing) UpdateDetails(title, description string, category CategoryID) error {
	if err := l.requireActive("update details"); err != nil {
		return err
	}
	if category.IsZero() {
		return fmt.Errorf("%w: category is required", ErrInvalidListing)
	}

	t, err := NewTitle(title)
	if err != nil {
		return err
	}
	d, err := NewDescription(description)
	if err != nil {
		return err
	}

	l.title = t
	l.description = d
	l.categoryID = category
	l.updatedAt = time.Now().UTC()
	l.addEvent(event.NewListingDetailsUpdated(l.id.String(), l.sellerID.String(), t.String(), category.String()))
	return nil
}

// ChangePrice reprices an active fixed-price listing.
func (l *Listing) ChangePrice(price Money) error {
	if l.listingType != ListingTypeFixedPrice {
		return fmt.Errorf("%w: only fixed-price listings can be repriced", ErrInvalidStateTransition)
	}
	if err := l.requireActive("change price"); err != nil {
		return err
	}
	if price.IsZero() {
		return fmt.Errorf("%w: fixed price must be positive", ErrInvalidMoney)
	}
	if price.Currency() != l.price.Currency() {
		return fmt.Errorf("%w: %s to %s", ErrCurrencyMismatch, l.price.Currency(), price.Currency())
	}

	old := l.price
	l.price = price
	l.updatedAt = time.Now().UTC()
	l.addEvent(event.NewListingPriceChanged(
		l.id.String(), l.sellerID.String(), old.Amount().StringFixed(2), price.Amount().StringFixed(2), price.Currency(),
	))
	return nil
}

// MarkAsExpired ends an active listing that ran out of time.
func (l *Listing) MarkAsExpired() error {
	if err := l.requireActive("expire"); err != nil {
		return err
	}

	now := time.Now().UTC()
	l.status = ListingStatusExpired
	l.updatedAt = now
	l.addEvent(event.NewListingExpired(l.id.String(), l.sellerID.String(), now))
	return nil
}

// MarkAsCompleted ends an active listing that was sold or given away.
func (l *Listing) MarkAsCompleted() error {
	if err := l.requireActive("complete"); err != nil {
		return err
	}

	now := time.Now().UTC()
	l.status = ListingStatusCompleted
	l.completedAt = &now
	l.updatedAt = now
	l.addEvent(event.NewListingCompleted(
		l.id.String(), l.sellerID.String(), l.price.Amount().StringFixed(2), l.price.Currency(), now,
	))
	return nil
}

// SoftDelete hides the listing. An active listing becomes Cancelled; a
// listing that already ended keeps its terminal status.
func (l *Listing) SoftDelete() error {
	if l.IsDeleted() {
		return ErrAlreadyDeleted
	}

	now := time.Now().UTC()
	l.deletedAt = &now
	if l.status == ListingStatusActive {
		l.status = ListingStatusCancelled
	}
	l.updatedAt = now
	l.addEvent(event.NewListingSoftDeleted(l.id.String(), l.sellerID.String(), now))
	return nil
}

// Restore undoes SoftDelete. A Cancelled listing becomes active again; a
// Completed or Expired one is only unhidden and stays ended.
func (l *Listing) Restore() error {
	if !l.IsDeleted() {
		return ErrNotDeleted
	}

	l.deletedAt = nil
	if l.status == ListingStatusCancelled {
		l.status = ListingStatusActive
	}
	l.updatedAt = time.Now().UTC()
	l.addEvent(event.NewListingRestored(l.id.String(), l.sellerID.String()))
	return nil
}

// IncrementViewCount records one view. It raises no event.
func (l *Listing) IncrementViewCount() {
	l.viewCount++
}

func (l *Listing) requireActive(op string) error {
	if l.status != ListingStatusActive {
		return fmt.Errorf("%w: cannot %s a %s listing", ErrInvalidStateTransition, op, l.status)
	}
	return nil
}

// addEvent adds a domain event to the aggregate.
func (l *Listing) addEvent(e event.Event) {
	l.events = append(l.events, e)
}

// Events returns all uncommitted domain events.
func (l *Listing) Events() []event.Event {
	return l.events
}

// ClearEvents clears all domain events after they have been dispatched.
func (l *Listing) ClearEvents() {
	l.events = make([]event.Event, 0)
}
