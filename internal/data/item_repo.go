package data

import (
	"context"
	"fmt"

	"go-marketplace/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ domain.ItemOwnership = (*itemRepo)(nil)

const itemsTable = "items"

// itemRepo reads item ownership from the catalog's items table.
type itemRepo struct {
	data *Data
}

// NewItemRepo creates a new item ownership adapter.
func NewItemRepo(data *Data) domain.ItemOwnership {
	return &itemRepo{data: data}
}

// OwnerOf returns the seller owning the item.
func (r *itemRepo) OwnerOf(ctx context.Context, itemID domain.ItemID) (domain.SellerID, error) {
	var sellerID uuid.UUID
	found, err := r.data.builder(ctx).From(itemsTable).
		Prepared(true).
		Select("seller_id").
		Where(goqu.I("id").Eq(uuid.UUID(itemID))).
		ScanValContext(ctx, &sellerID)
	if err != nil {
		return domain.SellerID{}, fmt.Errorf("could not fetch item owner: %w", err)
	}
	if !found {
		return domain.SellerID{}, domain.ErrItemNotFound
	}

	return domain.SellerID(sellerID), nil
}
