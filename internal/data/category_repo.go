package data

import (
	"context"
	"fmt"
	"time"

	"go-marketplace/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Compile-time interface check
var _ domain.CategoryRepository = (*categoryRepo)(nil)

const categoriesTable = "categories"

type pgCategory struct {
	ID        uuid.UUID     `db:"id"         goqu:"skipupdate"`
	ParentID  uuid.NullUUID `db:"parent_id"`
	Name      string        `db:"name"`
	CreatedAt time.Time     `db:"created_at" goqu:"skipupdate"`
}

func (r pgCategory) ToDomain() *domain.Category {
	var parent *domain.CategoryID
	if r.ParentID.Valid {
		parent = lo.ToPtr(domain.CategoryID(r.ParentID.UUID))
	}
	return domain.ReconstructCategory(domain.CategoryID(r.ID), parent, r.Name, r.CreatedAt)
}

func categoryToPg(c *domain.Category) pgCategory {
	row := pgCategory{
		ID:        uuid.UUID(c.ID()),
		Name:      c.Name(),
		CreatedAt: c.CreatedAt(),
	}
	if p := c.ParentID(); p != nil {
		row.ParentID = uuid.NullUUID{UUID: uuid.UUID(*p), Valid: true}
	}
	return row
}

// categoryRepo persists the category tree.
type categoryRepo struct {
	data *Data
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(data *Data) domain.CategoryRepository {
	return &categoryRepo{data: data}
}

// Save upserts the category.
func (r *categoryRepo) Save(ctx context.Context, c *domain.Category) error {
	row := categoryToPg(c)
	if _, err := r.data.builder(ctx).Insert(categoriesTable).
		Prepared(true).
		Rows(row).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"parent_id": row.ParentID,
			"name":      row.Name,
		})).
		Executor().ExecContext(ctx); err != nil {
		return mapWriteError(fmt.Errorf("could not save category: %w", err))
	}
	return nil
}

// FindByID retrieves a category or domain.ErrCategoryNotFound.
func (r *categoryRepo) FindByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	var row pgCategory
	found, err := r.data.builder(ctx).From(categoriesTable).
		Prepared(true).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch category: %w", err)
	}
	if !found {
		return nil, domain.ErrCategoryNotFound
	}
	return row.ToDomain(), nil
}

// DescendantIDs walks the tree below id with a recursive CTE bounded by the maximum depth.
func (r *categoryRepo) DescendantIDs(ctx context.Context, id domain.CategoryID) ([]domain.CategoryID, error) {
	const query = `WITH RECURSIVE tree (id, depth) AS (
	SELECT id, 0 FROM categories WHERE id = $1
	UNION ALL
	SELECT c.id, t.depth + 1 FROM categories c JOIN tree t ON c.parent_id = t.id WHERE t.depth < $2
)
SELECT id FROM tree ORDER BY depth, id`

	var raw []uuid.UUID
	if err := r.data.db.ScanValsContext(ctx, &raw, query, uuid.UUID(id), domain.MaxCategoryDepth); err != nil {
		return nil, fmt.Errorf("could not fetch category descendants: %w", err)
	}
	ids := lo.Map(raw, func(v uuid.UUID, _ int) domain.CategoryID { return domain.CategoryID(v) })
	if len(ids) == 0 {
		return nil, domain.ErrCategoryNotFound
	}

	return ids, nil
}
