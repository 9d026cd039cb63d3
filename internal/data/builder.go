package data

import (
	"context"
	"errors"
	"fmt"

	"go-marketplace/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgconn"
)

// Builder abstracts the goqu methods the repositories use. Both a goqu
// database handle and a transaction handle implement it.
type Builder interface {
	From(table ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

var (
	_ Builder = (*goqu.Database)(nil)
	_ Builder = (*goqu.TxDatabase)(nil)
)

// builder returns the transaction carried by ctx, or the pool.
func (d *Data) builder(ctx context.Context) Builder {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.db
}

const (
	pgUniqueViolation = "23505"

	activeListingIndex = "ux_listings_item_active"
)

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == activeListingIndex {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateActiveListing, pgErr.Detail)
		}
		return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, pgErr.Message)
	}

	return err
}
