package data

import (
	"context"
	"fmt"
	"time"

	"go-marketplace/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ domain.ListingRepository = (*listingRepo)(nil)

// listingRepo implements domain.ListingRepository on Postgres.
type listingRepo struct {
	data *Data
	log  *log.Helper
}

// NewListingRepo creates a new listing repository.
func NewListingRepo(data *Data, logger log.Logger) *listingRepo {
	return &listingRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Save inserts a never-persisted listing or updates it guarded by its version.
func (r *listingRepo) Save(ctx context.Context, l *domain.Listing) error {
	trackAggregate(ctx, l)

	if l.Version() == 0 {
		return r.insert(ctx, l)
	}
	return r.update(ctx, l)
}

func (r *listingRepo) insert(ctx context.Context, l *domain.Listing) error {
	row := listingToPg(l)
	row.Version = 1

	if _, err := r.data.builder(ctx).Insert(listingsTable).
		Prepared(true).
		Rows(row).
		Executor().ExecContext(ctx); err != nil {
		return mapWriteError(fmt.Errorf("could not insert listing: %w", err))
	}

	l.SetVersion(1)
	return nil
}

func (r *listingRepo) update(ctx context.Context, l *domain.Listing) error {
	expected := l.Version()
	row := listingToPg(l)
	row.Version = expected + 1

	res, err := r.data.builder(ctx).Update(listingsTable).
		Prepared(true).
		Set(row).
		Where(
			goqu.I("id").Eq(row.ID),
			goqu.I("version").Eq(expected),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return mapWriteError(fmt.Errorf("could not update listing: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: listing %s at version %d", domain.ErrConcurrentModification, l.ID(), expected)
	}

	l.SetVersion(expected + 1)
	return nil
}

// FindByID retrieves a listing, including soft-deleted ones.
func (r *listingRepo) FindByID(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	var row pgListing
	found, err := r.data.builder(ctx).From(listingsTable).
		Prepared(true).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch listing: %w", err)
	}
	if !found {
		return nil, domain.ErrListingNotFound
	}

	return row.ToDomain()
}

// ExistsActiveForItem checks the same predicate as ux_listings_item_active.
func (r *listingRepo) ExistsActiveForItem(ctx context.Context, itemID domain.ItemID) (bool, error) {
	n, err := r.data.builder(ctx).From(listingsTable).
		Prepared(true).
		Where(
			goqu.I("item_id").Eq(uuid.UUID(itemID)),
			goqu.I("deleted_at").IsNull(),
		).
		CountContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not check active listing: %w", err)
	}
	return n > 0, nil
}

// IncrementViewCount bumps the counter in place without touching version.
func (r *listingRepo) IncrementViewCount(ctx context.Context, id domain.ListingID) error {
	res, err := r.data.builder(ctx).Update(listingsTable).
		Prepared(true).
		Set(goqu.Record{"view_count": goqu.L("view_count + 1")}).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not increment view count: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// FindDueForExpiry returns active listings whose expiry has passed, oldest first.
func (r *listingRepo) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Listing, error) {
	var rows []pgListing
	if err := r.data.builder(ctx).From(listingsTable).
		Prepared(true).
		Where(
			goqu.I("status").Eq(domain.ListingStatusActive.String()),
			goqu.I("deleted_at").IsNull(),
			goqu.I("expires_at").Lte(now),
		).
		Order(goqu.I("expires_at").Asc()).
		Limit(uint(limit)).
		ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch expirable listings: %w", err)
	}

	return pgListingsToDomain(rows)
}
