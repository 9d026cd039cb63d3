package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxCategoryDepth bounds ancestor walks so a corrupted tree cannot loop forever.
const MaxCategoryDepth = 32

// Category is a node in the listing category tree.
type Category struct {
	id        CategoryID
	parentID  *CategoryID
	name      string
	createdAt time.Time
}

// NewCategory creates a category under parent, or a root when parent is nil.
func NewCategory(name string, parent *CategoryID) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, 100),
	); err != nil {
		return nil, fmt.Errorf("%w: category name: %v", ErrInvalidListing, err)
	}

	return &Category{
		id:        NewCategoryID(),
		parentID:  parent,
		name:      name,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructCategory rebuilds a category from persistence.
func ReconstructCategory(id CategoryID, parent *CategoryID, name string, createdAt time.Time) *Category {
	return &Category{id: id, parentID: parent, name: name, createdAt: createdAt}
}

func (c *Category) ID() CategoryID        { return c.id }
func (c *Category) ParentID() *CategoryID { return c.parentID }
func (c *Category) Name() string          { return c.name }
func (c *Category) CreatedAt() time.Time  { return c.createdAt }

// MoveUnder re-parents the category. Callers must check for cycles first with EnsureAcyclicMove.
func (c *Category) MoveUnder(parent *CategoryID) {
	c.parentID = parent
}

// CategoryLookup loads categories by id.
type CategoryLookup interface {
	FindByID(ctx context.Context, id CategoryID) (*Category, error)
}

// EnsureAcyclicMove checks that placing child under newParent keeps the tree
// acyclic: it walks newParent's ancestor chain to the root and fails if child
// appears on it.
func EnsureAcyclicMove(ctx context.Context, lookup CategoryLookup, child, newParent CategoryID) error {
	current := newParent
	for depth := 0; depth < MaxCategoryDepth; depth++ {
		if current == child {
			return fmt.Errorf("%w: %s is an ancestor of %s", ErrCategoryCycle, child, newParent)
		}

		cat, err := lookup.FindByID(ctx, current)
		if err != nil {
			return err
		}
		if cat.ParentID() == nil {
			return nil
		}
		current = *cat.ParentID()
	}

	return fmt.Errorf("%w: more than %d levels above %s", ErrCategoryTooDeep, MaxCategoryDepth, newParent)
}
