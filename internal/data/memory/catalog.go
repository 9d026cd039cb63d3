package memory

import (
	"context"

	"go-marketplace/internal/domain"
)

// Compile-time interface checks
var (
	_ domain.ItemOwnership      = (*ItemOwnership)(nil)
	_ domain.CategoryRepository = (*CategoryRepository)(nil)
)

// ItemOwnership resolves owners from the items registered with Store.AddItem.
type ItemOwnership struct {
	store *Store
}

func NewItemOwnership(store *Store) *ItemOwnership {
	return &ItemOwnership{store: store}
}

func (o *ItemOwnership) OwnerOf(_ context.Context, itemID domain.ItemID) (domain.SellerID, error) {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	seller, ok := o.store.items[itemID]
	if !ok {
		return domain.SellerID{}, domain.ErrItemNotFound
	}
	return seller, nil
}

// CategoryRepository keeps the category tree in the store.
type CategoryRepository struct {
	store *Store
}

func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) Save(_ context.Context, c *domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if parent := c.ParentID(); parent != nil {
		if _, ok := r.store.categories[*parent]; !ok {
			return domain.ErrCategoryNotFound
		}
	}
	r.store.categories[c.ID()] = domain.ReconstructCategory(c.ID(), c.ParentID(), c.Name(), c.CreatedAt())
	return nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id domain.CategoryID) (*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return domain.ReconstructCategory(c.ID(), c.ParentID(), c.Name(), c.CreatedAt()), nil
}

// DescendantIDs walks the tree breadth first; id comes first.
func (r *CategoryRepository) DescendantIDs(_ context.Context, id domain.CategoryID) ([]domain.CategoryID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.categories[id]; !ok {
		return nil, domain.ErrCategoryNotFound
	}

	ids := []domain.CategoryID{id}
	seen := map[domain.CategoryID]bool{id: true}
	for i := 0; i < len(ids); i++ {
		for childID, c := range r.store.categories {
			if p := c.ParentID(); p != nil && *p == ids[i] && !seen[childID] {
				seen[childID] = true
				ids = append(ids, childID)
			}
		}
	}
	return ids, nil
}
