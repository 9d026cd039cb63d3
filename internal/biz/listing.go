package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-marketplace/internal/domain"
	"go-marketplace/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// CreateListingCommand carries the fields shared by every listing type.
type CreateListingCommand struct {
	RequesterID domain.SellerID
	ItemID      domain.ItemID
	CategoryID  domain.CategoryID
	Title       string
	Description string
	Location    domain.Location
}

// UpdateListingCommand changes the fields that are set. Price applies to
// fixed-price listings only.
type UpdateListingCommand struct {
	ListingID   domain.ListingID
	RequesterID domain.SellerID
	Title       *string
	Description *string
	CategoryID  *domain.CategoryID
	Location    *domain.Location
	Price       *domain.Money
}

// ListingUsecase is the listing domain service: it creates listings and runs
// their transitions, each inside one unit of work.
type ListingUsecase struct {
	repo    domain.ListingRepository
	items   domain.ItemOwnership
	uow     domain.UnitOfWork
	metrics *metrics.Metrics
	log     *log.Helper
}

// NewListingUsecase creates a new ListingUsecase.
func NewListingUsecase(
	repo domain.ListingRepository,
	items domain.ItemOwnership,
	uow domain.UnitOfWork,
	m *metrics.Metrics,
	logger log.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:    repo,
		items:   items,
		uow:     uow,
		metrics: m,
		log:     log.NewHelper(logger),
	}
}

// CreateFreeListing creates a giveaway.
func (uc *ListingUsecase) CreateFreeListing(ctx context.Context, cmd CreateListingCommand) (*domain.Listing, error) {
	return uc.create(ctx, cmd, domain.NewFreeListing)
}

// CreateFreeToAuctionListing creates a giveaway that turns into an auction on its first bid.
func (uc *ListingUsecase) CreateFreeToAuctionListing(ctx context.Context, cmd CreateListingCommand, duration time.Duration) (*domain.Listing, error) {
	return uc.create(ctx, cmd, func(d domain.ListingDetails) (*domain.Listing, error) {
		return domain.NewFreeToAuctionListing(d, duration)
	})
}

// CreateForwardAuctionListing creates an ascending auction.
func (uc *ListingUsecase) CreateForwardAuctionListing(
	ctx context.Context,
	cmd CreateListingCommand,
	starting domain.Money,
	reserve, buyNow *domain.Money,
	duration time.Duration,
) (*domain.Listing, error) {
	return uc.create(ctx, cmd, func(d domain.ListingDetails) (*domain.Listing, error) {
		return domain.NewForwardAuctionListing(d, starting, reserve, buyNow, duration)
	})
}

// CreateReverseAuctionListing creates a descending auction.
func (uc *ListingUsecase) CreateReverseAuctionListing(ctx context.Context, cmd CreateListingCommand, maxPrice domain.Money, duration time.Duration) (*domain.Listing, error) {
	return uc.create(ctx, cmd, func(d domain.ListingDetails) (*domain.Listing, error) {
		return domain.NewReverseAuctionListing(d, maxPrice, duration)
	})
}

// CreateFixedPriceListing creates a listing sold at a fixed price.
func (uc *ListingUsecase) CreateFixedPriceListing(ctx context.Context, cmd CreateListingCommand, price domain.Money) (*domain.Listing, error) {
	return uc.create(ctx, cmd, func(d domain.ListingDetails) (*domain.Listing, error) {
		return domain.NewFixedPriceListing(d, price)
	})
}

// create checks ownership and uniqueness, builds the listing and saves it
// in one transaction. The storage unique index decides lost races.
func (uc *ListingUsecase) create(
	ctx context.Context,
	cmd CreateListingCommand,
	factory func(domain.ListingDetails) (*domain.Listing, error),
) (*domain.Listing, error) {
	var listing *domain.Listing

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		owner, err := uc.items.OwnerOf(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		if owner != cmd.RequesterID {
			return domain.ErrNotItemOwner
		}

		exists, err := uc.repo.ExistsActiveForItem(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateActiveListing
		}

		listing, err = factory(domain.ListingDetails{
			ItemID:      cmd.ItemID,
			SellerID:    cmd.RequesterID,
			CategoryID:  cmd.CategoryID,
			Title:       cmd.Title,
			Description: cmd.Description,
			Location:    cmd.Location,
		})
		if err != nil {
			return err
		}

		return uc.repo.Save(ctx, listing)
	})
	if err != nil {
		uc.observeError(err)
		return nil, err
	}

	uc.metrics.ListingCreated(listing.Type().String())
	uc.log.WithContext(ctx).Infof("Listing created: %s (%s) for item %s", listing.ID(), listing.Type(), listing.ItemID())
	return listing, nil
}

// GetListing returns a non-deleted listing and records one view.
func (uc *ListingUsecase) GetListing(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.IsDeleted() {
		return nil, domain.ErrListingNotFound
	}

	// A lost view is not worth failing the read.
	if err := uc.repo.IncrementViewCount(ctx, id); err != nil {
		uc.log.WithContext(ctx).Warnf("Failed to record view for listing %s: %v", id, err)
	} else {
		listing.IncrementViewCount()
	}

	return listing, nil
}

// UpdateListing applies the set fields of cmd on behalf of the owner.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, cmd UpdateListingCommand) (*domain.Listing, error) {
	return uc.transition(ctx, "update", cmd.ListingID, &cmd.RequesterID, func(l *domain.Listing) error {
		if cmd.Title != nil || cmd.Description != nil || cmd.CategoryID != nil {
			title := l.Title().String()
			if cmd.Title != nil {
				title = *cmd.Title
			}
			description := l.Description().String()
			if cmd.Description != nil {
				description = *cmd.Description
			}
			category := l.CategoryID()
			if cmd.CategoryID != nil {
				category = *cmd.CategoryID
			}
			if err := l.UpdateDetails(title, description, category); err != nil {
				return err
			}
		}
		if cmd.Location != nil {
			if err := l.UpdateLocation(*cmd.Location); err != nil {
				return err
			}
		}
		if cmd.Price != nil {
			if err := l.ChangePrice(*cmd.Price); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteListing soft-deletes the listing on behalf of the owner.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, id domain.ListingID, requester domain.SellerID) error {
	_, err := uc.transition(ctx, "soft_delete", id, &requester, (*domain.Listing).SoftDelete)
	return err
}

// RestoreListing undoes DeleteListing on behalf of the owner.
func (uc *ListingUsecase) RestoreListing(ctx context.Context, id domain.ListingID, requester domain.SellerID) (*domain.Listing, error) {
	return uc.transition(ctx, "restore", id, &requester, (*domain.Listing).Restore)
}

// MarkListingCompleted records that the item was sold or given away.
func (uc *ListingUsecase) MarkListingCompleted(ctx context.Context, id domain.ListingID, requester domain.SellerID) (*domain.Listing, error) {
	return uc.transition(ctx, "complete", id, &requester, (*domain.Listing).MarkAsCompleted)
}

// ExpireListing expires an active listing. It is called by the expiry sweep.
func (uc *ListingUsecase) ExpireListing(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	return uc.transition(ctx, "expire", id, nil, (*domain.Listing).MarkAsExpired)
}

// ConvertToForwardAuction turns a free-to-auction listing into a forward
// auction when the bidding collaborator reports its first bid.
func (uc *ListingUsecase) ConvertToForwardAuction(ctx context.Context, id domain.ListingID, firstBid domain.Money) (*domain.Listing, error) {
	return uc.transition(ctx, "convert", id, nil, func(l *domain.Listing) error {
		return l.ConvertToForwardAuction(firstBid)
	})
}

// ExpireDueListings expires up to batch listings whose expiry is at or
// before now, one transaction each. Listings changed concurrently are
// skipped; they are picked up by the next sweep if still due.
func (uc *ListingUsecase) ExpireDueListings(ctx context.Context, now time.Time, batch int) (int, error) {
	due, err := uc.repo.FindDueForExpiry(ctx, now, batch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, l := range due {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		err := uc.uow.Do(ctx, func(ctx context.Context) error {
			if err := l.MarkAsExpired(); err != nil {
				return err
			}
			return uc.repo.Save(ctx, l)
		})
		switch {
		case err == nil:
			expired++
			uc.metrics.Transition("expire")
		case errors.Is(err, domain.ErrConcurrentModification), errors.Is(err, domain.ErrKindInvalidStateTransition):
			uc.log.WithContext(ctx).Infof("Skipping expiry of listing %s: %v", l.ID(), err)
		default:
			return expired, fmt.Errorf("could not expire listing %s: %w", l.ID(), err)
		}
	}

	if expired > 0 {
		uc.log.WithContext(ctx).Infof("Expired %d listings", expired)
	}
	return expired, nil
}

// transition loads the listing inside a unit of work, checks the requester
// when one is given, applies change and saves with the version check.
func (uc *ListingUsecase) transition(
	ctx context.Context,
	operation string,
	id domain.ListingID,
	requester *domain.SellerID,
	change func(*domain.Listing) error,
) (*domain.Listing, error) {
	var listing *domain.Listing

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		l, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if requester != nil && !l.IsOwnedBy(*requester) {
			return domain.ErrNotItemOwner
		}

		if err := change(l); err != nil {
			return err
		}
		if err := uc.repo.Save(ctx, l); err != nil {
			return err
		}

		listing = l
		return nil
	})
	if err != nil {
		uc.observeError(err)
		return nil, err
	}

	uc.metrics.Transition(operation)
	uc.log.WithContext(ctx).Infof("Listing %s: %s", operation, id)
	return listing, nil
}

func (uc *ListingUsecase) observeError(err error) {
	if errors.Is(err, domain.ErrDuplicateActiveListing) || errors.Is(err, domain.ErrConcurrentModification) {
		uc.metrics.Conflict()
	}
}
