package domain

import (
	"go-marketplace/internal/domain/valueobject"
	"go-marketplace/pkg/serrors"
)

// ErrKindInvalidStateTransition marks an operation attempted from a status or
// type that forbids it.
var ErrKindInvalidStateTransition = serrors.NewKind("INVALID_STATE_TRANSITION")

var (
	ErrListingNotFound  = serrors.With(serrors.ErrNotFound, "listing not found")
	ErrItemNotFound     = serrors.With(serrors.ErrNotFound, "item not found")
	ErrCategoryNotFound = serrors.With(serrors.ErrNotFound, "category not found")

	ErrNotItemOwner = serrors.With(serrors.ErrForbidden, "seller does not own the item")

	ErrDuplicateActiveListing = serrors.With(serrors.ErrConflict, "item already has an active listing")
	ErrConcurrentModification = serrors.With(serrors.ErrConflict, "listing was modified concurrently")
	ErrAlreadyConverted       = serrors.With(serrors.ErrConflict, "listing has already been converted to an auction")

	ErrInvalidStateTransition = serrors.With(ErrKindInvalidStateTransition, "invalid state transition")
	ErrAlreadyDeleted         = serrors.With(ErrKindInvalidStateTransition, "listing is already deleted")
	ErrNotDeleted             = serrors.With(ErrKindInvalidStateTransition, "listing is not deleted")

	ErrInvalidListing  = serrors.With(serrors.ErrBadRequest, "invalid listing")
	ErrInvalidSearch   = serrors.With(serrors.ErrBadRequest, "invalid search criteria")
	ErrCategoryCycle   = serrors.With(serrors.ErrBadRequest, "category move would create a cycle")
	ErrCategoryTooDeep = serrors.With(serrors.ErrBadRequest, "category hierarchy is too deep")

	// Re-export value object errors for convenience.
	ErrInvalidMoney       = valueobject.ErrInvalidMoney
	ErrCurrencyMismatch   = valueobject.ErrCurrencyMismatch
	ErrInvalidLocation    = valueobject.ErrInvalidLocation
	ErrInvalidAuction     = valueobject.ErrInvalidAuction
	ErrInvalidListingType = valueobject.ErrInvalidListingType
	ErrInvalidStatus      = valueobject.ErrInvalidStatus
	ErrInvalidID          = valueobject.ErrInvalidID
)
