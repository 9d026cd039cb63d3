package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-marketplace/internal/domain"
)

type categoryMap map[domain.CategoryID]*domain.Category

func (m categoryMap) FindByID(_ context.Context, id domain.CategoryID) (*domain.Category, error) {
	c, ok := m[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (m categoryMap) add(parent *domain.Category) *domain.Category {
	var parentID *domain.CategoryID
	if parent != nil {
		id := parent.ID()
		parentID = &id
	}
	c := domain.ReconstructCategory(domain.NewCategoryID(), parentID, "c", time.Now())
	m[c.ID()] = c
	return c
}

func TestNewCategory(t *testing.T) {
	c, err := domain.NewCategory("  Bikes ", nil)

	require.NoError(t, err)
	assert.Equal(t, "Bikes", c.Name())
	assert.Nil(t, c.ParentID())
	assert.False(t, c.ID().IsZero())

	_, err = domain.NewCategory("   ", nil)
	assert.Error(t, err)
}

func TestEnsureAcyclicMove(t *testing.T) {
	// Arrange: root -> a -> b -> c, plus an unrelated root x
	tree := categoryMap{}
	root := tree.add(nil)
	a := tree.add(root)
	b := tree.add(a)
	c := tree.add(b)
	x := tree.add(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		child   *domain.Category
		parent  *domain.Category
		wantErr error
	}{
		{"move leaf to other root", c, x, nil},
		{"move subtree to sibling branch", b, root, nil},
		{"self parent", a, a, domain.ErrCategoryCycle},
		{"under own child", a, b, domain.ErrCategoryCycle},
		{"under own grandchild", root, c, domain.ErrCategoryCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := domain.EnsureAcyclicMove(ctx, tree, tt.child.ID(), tt.parent.ID())

			// Assert
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEnsureAcyclicMove_UnknownParent(t *testing.T) {
	tree := categoryMap{}
	child := tree.add(nil)

	err := domain.EnsureAcyclicMove(context.Background(), tree, child.ID(), domain.NewCategoryID())

	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestEnsureAcyclicMove_TooDeep(t *testing.T) {
	// Arrange: a chain deeper than the walk bound
	tree := categoryMap{}
	node := tree.add(nil)
	for i := 0; i < domain.MaxCategoryDepth+1; i++ {
		node = tree.add(node)
	}
	other := tree.add(nil)

	// Act
	err := domain.EnsureAcyclicMove(context.Background(), tree, other.ID(), node.ID())

	// Assert
	assert.ErrorIs(t, err, domain.ErrCategoryTooDeep)
}
