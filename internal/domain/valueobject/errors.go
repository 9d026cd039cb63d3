package valueobject

import "go-marketplace/pkg/serrors"

var (
	ErrInvalidMoney       = serrors.With(serrors.ErrBadRequest, "invalid money")
	ErrCurrencyMismatch   = serrors.With(serrors.ErrBadRequest, "currency mismatch")
	ErrNegativeMoney      = serrors.With(serrors.ErrBadRequest, "money amount would be negative")
	ErrInvalidLocation    = serrors.With(serrors.ErrBadRequest, "invalid location")
	ErrInvalidAuction     = serrors.With(serrors.ErrBadRequest, "invalid auction settings")
	ErrInvalidListingType = serrors.With(serrors.ErrBadRequest, "invalid listing type")
	ErrInvalidStatus      = serrors.With(serrors.ErrBadRequest, "invalid listing status")
	ErrInvalidID          = serrors.With(serrors.ErrBadRequest, "invalid identifier")
	ErrInvalidTitle       = serrors.With(serrors.ErrBadRequest, "invalid title")
	ErrInvalidDescription = serrors.With(serrors.ErrBadRequest, "invalid description")
)
