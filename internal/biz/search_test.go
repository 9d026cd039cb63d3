package biz

import (
	"context"
	"testing"

	"go-marketplace/internal/data/memory"
	"go-marketplace/internal/domain"
	"go-marketplace/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SearchUsecaseTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.Store
	listings   *ListingUsecase
	categories *CategoryUsecase
	uc         *SearchUsecase
	seller     domain.SellerID
	furniture  *domain.Category
	sofas      *domain.Category
}

func (s *SearchUsecaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	m := metrics.New()
	categoryRepo := memory.NewCategoryRepository(s.store)

	s.listings = NewListingUsecase(memory.NewListingRepository(s.store), memory.NewItemOwnership(s.store),
		memory.NewUnitOfWork(s.store), m, log.DefaultLogger)
	s.categories = NewCategoryUsecase(categoryRepo, log.DefaultLogger)
	s.uc = NewSearchUsecase(memory.NewListingSearcher(s.store), categoryRepo, m, log.DefaultLogger)
	s.seller = domain.NewSellerID()

	var err error
	s.furniture, err = s.categories.CreateCategory(s.ctx, "Furniture", nil)
	s.Require().NoError(err)
	s.sofas, err = s.categories.CreateCategory(s.ctx, "Sofas", lo.ToPtr(s.furniture.ID()))
	s.Require().NoError(err)
}

func TestSearchUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(SearchUsecaseTestSuite))
}

func (s *SearchUsecaseTestSuite) createFree(title string, category domain.CategoryID, lat, lon float64) *domain.Listing {
	item := domain.NewItemID()
	s.store.AddItem(item, s.seller)

	l, err := s.listings.CreateFreeListing(s.ctx, CreateListingCommand{
		RequesterID: s.seller,
		ItemID:      item,
		CategoryID:  category,
		Title:       title,
		Description: title + " in good condition",
		Location:    domain.MustLocation(lat, lon),
	})
	s.Require().NoError(err)
	return l
}

func (s *SearchUsecaseTestSuite) TestSearch_RadiusExcludesFarListings() {
	// Arrange: roughly 50 km and 2 km north of lower Manhattan
	far := s.createFree("Far couch", s.sofas.ID(), 41.1628, -74.0060)
	near := s.createFree("Near couch", s.sofas.ID(), 40.7308, -74.0060)
	nearest := s.createFree("Nearest couch", s.sofas.ID(), 40.7138, -74.0060)

	// Act
	result, err := s.uc.Search(s.ctx, domain.SearchParams{
		Latitude:  lo.ToPtr(40.7128),
		Longitude: lo.ToPtr(-74.0060),
		RadiusKm:  lo.ToPtr(10.0),
	})

	// Assert
	s.Require().NoError(err)
	ids := lo.Map(result.Items, func(h domain.SearchHit, _ int) domain.ListingID { return h.Listing.ID() })
	assert.Equal(s.T(), []domain.ListingID{nearest.ID(), near.ID()}, ids)
	assert.NotContains(s.T(), ids, far.ID())
	assert.Equal(s.T(), 2, result.TotalCount)

	s.Require().NotNil(result.Items[1].DistanceKm)
	assert.InDelta(s.T(), 2.0, *result.Items[1].DistanceKm, 0.1)
}

func (s *SearchUsecaseTestSuite) TestSearch_CategoryIncludesDescendants() {
	// Arrange
	sofa := s.createFree("Sofa", s.sofas.ID(), 40.7128, -74.0060)
	table := s.createFree("Table", s.furniture.ID(), 40.7128, -74.0060)
	other, err := s.categories.CreateCategory(s.ctx, "Books", nil)
	s.Require().NoError(err)
	s.createFree("Novel", other.ID(), 40.7128, -74.0060)

	// Act
	result, err := s.uc.Search(s.ctx, domain.SearchParams{CategoryID: s.furniture.ID().String()})

	// Assert
	s.Require().NoError(err)
	ids := lo.Map(result.Items, func(h domain.SearchHit, _ int) domain.ListingID { return h.Listing.ID() })
	assert.ElementsMatch(s.T(), []domain.ListingID{sofa.ID(), table.ID()}, ids)
}

func (s *SearchUsecaseTestSuite) TestSearch_UnknownCategory() {
	// Act
	_, err := s.uc.Search(s.ctx, domain.SearchParams{CategoryID: domain.NewCategoryID().String()})

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrCategoryNotFound)
}

func (s *SearchUsecaseTestSuite) TestSearch_InvalidCriteria() {
	// Act
	_, err := s.uc.Search(s.ctx, domain.SearchParams{
		Latitude:  lo.ToPtr(40.7128),
		Longitude: lo.ToPtr(-74.0060),
		RadiusKm:  lo.ToPtr(500.0),
	})

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrInvalidSearch)
}

func (s *SearchUsecaseTestSuite) TestSearch_HidesDeletedListings() {
	// Arrange
	kept := s.createFree("Lamp", s.furniture.ID(), 40.7128, -74.0060)
	gone := s.createFree("Lamp shade", s.furniture.ID(), 40.7128, -74.0060)
	s.Require().NoError(s.listings.DeleteListing(s.ctx, gone.ID(), s.seller))

	// Act
	result, err := s.uc.Search(s.ctx, domain.SearchParams{Text: "lamp"})

	// Assert
	s.Require().NoError(err)
	s.Require().Len(result.Items, 1)
	assert.Equal(s.T(), kept.ID(), result.Items[0].Listing.ID())
}
