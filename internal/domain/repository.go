package domain

import (
	"context"
	"time"
)

// ListingRepository defines persistence for the Listing aggregate.
// It is defined in the domain layer and implemented in the data layer.
type ListingRepository interface {
	// Save inserts a listing whose Version is zero, otherwise updates it with a
	// compare-and-swap on its version. A lost race returns ErrConcurrentModification;
	// a second non-deleted listing for the same item returns ErrDuplicateActiveListing.
	// Inside UnitOfWork.Do the listing is tracked for the outbox.
	Save(ctx context.Context, l *Listing) error

	// FindByID returns the listing, soft-deleted or not, or ErrListingNotFound.
	FindByID(ctx context.Context, id ListingID) (*Listing, error)

	// ExistsActiveForItem reports whether a non-deleted listing exists for the item.
	ExistsActiveForItem(ctx context.Context, itemID ItemID) (bool, error)

	// IncrementViewCount atomically increments the view count without
	// touching the version.
	IncrementViewCount(ctx context.Context, id ListingID) error

	// FindDueForExpiry returns up to limit active listings whose expiry is at or before now.
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*Listing, error)
}

// ListingSearcher is the read side used by discovery queries.
type ListingSearcher interface {
	Search(ctx context.Context, c SearchCriteria) (*SearchResult, error)
}

// ItemOwnership resolves which seller owns an item. Items are owned by the
// catalog; this service only reads them.
type ItemOwnership interface {
	// OwnerOf returns the owner of the item or ErrItemNotFound.
	OwnerOf(ctx context.Context, itemID ItemID) (SellerID, error)
}

// CategoryRepository persists the category tree.
type CategoryRepository interface {
	Save(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id CategoryID) (*Category, error)
	// DescendantIDs returns id followed by every category below it.
	DescendantIDs(ctx context.Context, id CategoryID) ([]CategoryID, error)
}
