package biz

import (
	"context"

	"go-marketplace/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
)

// CategoryUsecase maintains the category tree.
type CategoryUsecase struct {
	repo domain.CategoryRepository
	log  *log.Helper
}

func NewCategoryUsecase(repo domain.CategoryRepository, logger log.Logger) *CategoryUsecase {
	return &CategoryUsecase{repo: repo, log: log.NewHelper(logger)}
}

// CreateCategory adds a category under parent, or a root when parent is nil.
func (uc *CategoryUsecase) CreateCategory(ctx context.Context, name string, parent *domain.CategoryID) (*domain.Category, error) {
	if parent != nil {
		if _, err := uc.repo.FindByID(ctx, *parent); err != nil {
			return nil, err
		}
	}

	c, err := domain.NewCategory(name, parent)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("Category created: %s (%s)", c.Name(), c.ID())
	return c, nil
}

// MoveCategory re-parents id under parent, or makes it a root when parent
// is nil. Moves that would create a cycle are rejected.
func (uc *CategoryUsecase) MoveCategory(ctx context.Context, id domain.CategoryID, parent *domain.CategoryID) (*domain.Category, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if parent != nil {
		if err := domain.EnsureAcyclicMove(ctx, uc.repo, id, *parent); err != nil {
			return nil, err
		}
	}

	c.MoveUnder(parent)
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("Category %s moved", id)
	return c, nil
}
