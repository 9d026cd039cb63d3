package biz

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-marketplace/internal/data/memory"
	"go-marketplace/internal/domain"
	"go-marketplace/internal/domain/event"
	"go-marketplace/pkg/metrics"
	"go-marketplace/pkg/serrors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ListingUsecaseTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	repo    *memory.ListingRepository
	items   *mockItemOwnership
	metrics *metrics.Metrics
	uc      *ListingUsecase
	seller  domain.SellerID
	itemID  domain.ItemID
}

func (s *ListingUsecaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.repo = memory.NewListingRepository(s.store)
	s.items = new(mockItemOwnership)
	s.metrics = metrics.New()
	s.uc = NewListingUsecase(s.repo, s.items, memory.NewUnitOfWork(s.store), s.metrics, log.DefaultLogger)
	s.seller = domain.NewSellerID()
	s.itemID = domain.NewItemID()
	s.items.On("OwnerOf", mock.Anything, s.itemID).Return(s.seller, nil).Maybe()
}

func TestListingUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(ListingUsecaseTestSuite))
}

func (s *ListingUsecaseTestSuite) command(title string) CreateListingCommand {
	return CreateListingCommand{
		RequesterID: s.seller,
		ItemID:      s.itemID,
		CategoryID:  domain.NewCategoryID(),
		Title:       title,
		Description: title + ", pick up only",
		Location:    domain.MustLocation(40.7128, -74.0060),
	}
}

func (s *ListingUsecaseTestSuite) TestCreateFreeListing() {
	// Act
	l, err := s.uc.CreateFreeListing(s.ctx, s.command("Free Couch"))

	// Assert
	s.Require().NoError(err)
	assert.Equal(s.T(), domain.ListingStatusActive, l.Status())
	assert.True(s.T(), l.CurrentPrice().Equals(domain.ZeroMoney("USD")))
	s.Require().NotNil(l.ExpiresAt())
	assert.WithinDuration(s.T(), time.Now().Add(30*24*time.Hour), *l.ExpiresAt(), time.Minute)
	assert.Equal(s.T(), int64(1), l.Version())

	events := s.store.Events()
	s.Require().Len(events, 1)
	assert.Equal(s.T(), event.ListingCreatedName, events[0].EventName())
}

func (s *ListingUsecaseTestSuite) TestCreateForwardAuctionListing() {
	// Arrange
	reserve := domain.MustMoney("150.00", "USD")

	// Act
	l, err := s.uc.CreateForwardAuctionListing(s.ctx, s.command("Camera"),
		domain.MustMoney("100.00", "USD"), &reserve, nil, 7*24*time.Hour)

	// Assert
	s.Require().NoError(err)
	assert.True(s.T(), l.CurrentPrice().Equals(domain.MustMoney("100.00", "USD")))
	s.Require().NotNil(l.AuctionSettings())
	assert.True(s.T(), l.AuctionSettings().MinimumBidIncrement().Equals(domain.MustMoney("5.00", "USD")))
}

func (s *ListingUsecaseTestSuite) TestCreateForwardAuctionListing_ReserveBelowStarting() {
	// Arrange
	reserve := domain.MustMoney("50.00", "USD")

	// Act
	_, err := s.uc.CreateForwardAuctionListing(s.ctx, s.command("Camera"),
		domain.MustMoney("100.00", "USD"), &reserve, nil, 7*24*time.Hour)

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrInvalidAuction)
	exists, err := s.repo.ExistsActiveForItem(s.ctx, s.itemID)
	s.Require().NoError(err)
	assert.False(s.T(), exists)
	assert.Empty(s.T(), s.store.Events())
}

func (s *ListingUsecaseTestSuite) TestCreateReverseAndFixedPriceListings() {
	// Arrange
	otherItem := domain.NewItemID()
	s.items.On("OwnerOf", mock.Anything, otherItem).Return(s.seller, nil)
	fixedCmd := s.command("Bookshelf")
	fixedCmd.ItemID = otherItem

	// Act
	reverse, reverseErr := s.uc.CreateReverseAuctionListing(s.ctx, s.command("Wanted: bike"), domain.MustMoney("200.00", "USD"), 48*time.Hour)
	fixed, fixedErr := s.uc.CreateFixedPriceListing(s.ctx, fixedCmd, domain.MustMoney("75.00", "USD"))

	// Assert
	s.Require().NoError(reverseErr)
	s.Require().NoError(fixedErr)
	assert.Equal(s.T(), domain.ListingTypeReverseAuction, reverse.Type())
	assert.False(s.T(), reverse.AuctionSettings().AutoBidEnabled())
	assert.Equal(s.T(), domain.ListingTypeFixedPrice, fixed.Type())
	assert.Nil(s.T(), fixed.ExpiresAt())
	assert.Equal(s.T(), 1.0, promValue(s.metrics.ListingsCreated.WithLabelValues("fixed_price")))
}

func (s *ListingUsecaseTestSuite) TestCreate_ItemNotFound() {
	// Arrange
	cmd := s.command("Ghost")
	cmd.ItemID = domain.NewItemID()
	s.items.On("OwnerOf", mock.Anything, cmd.ItemID).Return(domain.SellerID{}, domain.ErrItemNotFound)

	// Act
	_, err := s.uc.CreateFreeListing(s.ctx, cmd)

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrItemNotFound)
}

func (s *ListingUsecaseTestSuite) TestCreate_NotOwner() {
	// Arrange
	cmd := s.command("Not mine")
	cmd.RequesterID = domain.NewSellerID()

	// Act
	_, err := s.uc.CreateFreeListing(s.ctx, cmd)

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrNotItemOwner)
}

func (s *ListingUsecaseTestSuite) TestCreate_DuplicateActiveListing() {
	// Arrange
	_, err := s.uc.CreateFreeListing(s.ctx, s.command("Couch"))
	s.Require().NoError(err)

	// Act
	_, err = s.uc.CreateFixedPriceListing(s.ctx, s.command("Couch"), domain.MustMoney("10.00", "USD"))

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrDuplicateActiveListing)
}

func (s *ListingUsecaseTestSuite) TestCreate_ConcurrentCallsHaveOneWinner() {
	// Arrange
	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.uc.CreateFreeListing(s.ctx, s.command("Free Couch"))
		}(i)
	}
	wg.Wait()

	// Assert
	assert.Equal(s.T(), 1, lo.CountBy(errs, func(err error) bool { return err == nil }))
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(s.T(), err, domain.ErrDuplicateActiveListing)
		}
	}
	assert.Len(s.T(), s.store.Events(), 1)
}

func (s *ListingUsecaseTestSuite) TestConvertToForwardAuction() {
	// Arrange
	l, err := s.uc.CreateFreeToAuctionListing(s.ctx, s.command("Lamp"), 72*time.Hour)
	s.Require().NoError(err)
	assert.Nil(s.T(), l.ExpiresAt())

	// Act
	converted, err := s.uc.ConvertToForwardAuction(s.ctx, l.ID(), domain.MustMoney("10.00", "USD"))

	// Assert
	s.Require().NoError(err)
	assert.Equal(s.T(), domain.ListingTypeForwardAuction, converted.Type())
	assert.True(s.T(), converted.CurrentPrice().Equals(domain.MustMoney("10.00", "USD")))
	s.Require().NotNil(converted.ExpiresAt())
	assert.WithinDuration(s.T(), time.Now().Add(72*time.Hour), *converted.ExpiresAt(), time.Minute)
	assert.Equal(s.T(), int64(2), converted.Version())

	// a second first bid is a conflict
	_, err = s.uc.ConvertToForwardAuction(s.ctx, l.ID(), domain.MustMoney("12.00", "USD"))
	assert.ErrorIs(s.T(), err, domain.ErrAlreadyConverted)
}

func (s *ListingUsecaseTestSuite) TestConvertToForwardAuction_ConcurrentFirstBidsHaveOneWinner() {
	// Arrange
	l, err := s.uc.CreateFreeToAuctionListing(s.ctx, s.command("Lamp"), 72*time.Hour)
	s.Require().NoError(err)
	const bidders = 20
	errs := make([]error, bidders)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.uc.ConvertToForwardAuction(s.ctx, l.ID(), domain.MustMoney("10.00", "USD"))
		}(i)
	}
	wg.Wait()

	// Assert
	assert.Equal(s.T(), 1, lo.CountBy(errs, func(err error) bool { return err == nil }))
	for _, err := range errs {
		if err != nil {
			// losers either lose the version race or see the committed conversion
			assert.ErrorIs(s.T(), err, serrors.ErrConflict)
		}
	}
	stored, err := s.repo.FindByID(s.ctx, l.ID())
	s.Require().NoError(err)
	assert.Equal(s.T(), domain.ListingTypeForwardAuction, stored.Type())
	assert.Equal(s.T(), int64(2), stored.Version())
	converted := lo.Filter(s.store.Events(), func(e event.Event, _ int) bool {
		return e.EventName() == event.ListingConvertedToAuctionName
	})
	assert.Len(s.T(), converted, 1)
}

func (s *ListingUsecaseTestSuite) TestConvertToForwardAuction_WrongType() {
	// Arrange
	l, err := s.uc.CreateFreeListing(s.ctx, s.command("Lamp"))
	s.Require().NoError(err)

	// Act
	_, err = s.uc.ConvertToForwardAuction(s.ctx, l.ID(), domain.MustMoney("10.00", "USD"))

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrKindInvalidStateTransition)
}

func (s *ListingUsecaseTestSuite) TestGetListing_CountsViewsAndHidesDeleted() {
	// Arrange
	l, err := s.uc.CreateFreeListing(s.ctx, s.command("Couch"))
	s.Require().NoError(err)

	// Act
	first, err := s.uc.GetListing(s.ctx, l.ID())
	s.Require().NoError(err)
	second, err := s.uc.GetListing(s.ctx, l.ID())
	s.Require().NoError(err)
	s.Require().NoError(s.uc.DeleteListing(s.ctx, l.ID(), s.seller))
	_, deletedErr := s.uc.GetListing(s.ctx, l.ID())

	// Assert
	assert.Equal(s.T(), int64(1), first.ViewCount())
	assert.Equal(s.T(), int64(2), second.ViewCount())
	assert.ErrorIs(s.T(), deletedErr, domain.ErrListingNotFound)
}

func (s *ListingUsecaseTestSuite) TestDeleteAndRestore() {
	// Arrange
	l, err := s.uc.CreateFreeListing(s.ctx, s.command("Couch"))
	s.Require().NoError(err)

	// Act
	deleteErr := s.uc.DeleteListing(s.ctx, l.ID(), s.seller)
	againErr := s.uc.DeleteListing(s.ctx, l.ID(), s.seller)
	restored, restoreErr := s.uc.RestoreListing(s.ctx, l.ID(), s.seller)

	// Assert
	s.Require().NoError(deleteErr)
	assert.ErrorIs(s.T(), againErr, domain.ErrAlreadyDeleted)
	s.Require().NoError(restoreErr)
	assert.Equal(s.T(), domain.ListingStatusActive, restored.Status())
	assert.False(s.T(), restored.IsDeleted())
}

func (s *ListingUsecaseTestSuite) TestTransitions_RequireOwner() {
	// Arrange
	l, err := s.uc.CreateFreeListing(s.ctx, s.command("Couch"))
	s.Require().NoError(err)
	stranger := domain.NewSellerID()

	// Act
	deleteErr := s.uc.DeleteListing(s.ctx, l.ID(), stranger)
	_, completeErr := s.uc.MarkListingCompleted(s.ctx, l.ID(), stranger)
	_, updateErr := s.uc.UpdateListing(s.ctx, UpdateListingCommand{ListingID: l.ID(), RequesterID: stranger, Title: lo.ToPtr("Mine now")})

	// Assert
	assert.ErrorIs(s.T(), deleteErr, domain.ErrNotItemOwner)
	assert.ErrorIs(s.T(), completeErr, domain.ErrNotItemOwner)
	assert.ErrorIs(s.T(), updateErr, domain.ErrNotItemOwner)
}

func (s *ListingUsecaseTestSuite) TestUpdateListing() {
	// Arrange
	l, err := s.uc.CreateFixedPriceListing(s.ctx, s.command("Desk"), domain.MustMoney("80.00", "USD"))
	s.Require().NoError(err)
	moved := domain.MustLocation(34.0522, -118.2437)

	// Act
	updated, err := s.uc.UpdateListing(s.ctx, UpdateListingCommand{
		ListingID:   l.ID(),
		RequesterID: s.seller,
		Title:       lo.ToPtr("Standing desk"),
		Location:    &moved,
		Price:       lo.ToPtr(domain.MustMoney("70.00", "USD")),
	})

	// Assert
	s.Require().NoError(err)
	assert.Equal(s.T(), "Standing desk", updated.Title().String())
	assert.Equal(s.T(), l.Description().String(), updated.Description().String())
	assert.True(s.T(), updated.Location().Equals(moved))
	assert.True(s.T(), updated.CurrentPrice().Equals(domain.MustMoney("70.00", "USD")))

	names := lo.Map(s.store.Events(), func(e event.Event, _ int) string { return e.EventName() })
	assert.Equal(s.T(), []string{
		event.ListingCreatedName,
		event.ListingDetailsUpdatedName,
		event.ListingLocationUpdatedName,
		event.ListingPriceChangedName,
	}, names)
}

func (s *ListingUsecaseTestSuite) TestUpdateListing_FailureWritesNothing() {
	// Arrange
	l, err := s.uc.CreateFreeListing(s.ctx, s.command("Couch"))
	s.Require().NoError(err)

	// Act: the title change is valid, the price change is not
	_, err = s.uc.UpdateListing(s.ctx, UpdateListingCommand{
		ListingID:   l.ID(),
		RequesterID: s.seller,
		Title:       lo.ToPtr("Big couch"),
		Price:       lo.ToPtr(domain.MustMoney("5.00", "USD")),
	})

	// Assert
	assert.ErrorIs(s.T(), err, domain.ErrKindInvalidStateTransition)
	found, err := s.repo.FindByID(s.ctx, l.ID())
	s.Require().NoError(err)
	assert.Equal(s.T(), "Couch", found.Title().String())
	assert.Len(s.T(), s.store.Events(), 1)
}

func (s *ListingUsecaseTestSuite) TestMarkListingCompleted_IsTerminal() {
	// Arrange
	l, err := s.uc.CreateFixedPriceListing(s.ctx, s.command("Desk"), domain.MustMoney("80.00", "USD"))
	s.Require().NoError(err)

	// Act
	completed, err := s.uc.MarkListingCompleted(s.ctx, l.ID(), s.seller)
	s.Require().NoError(err)
	_, expireErr := s.uc.ExpireListing(s.ctx, l.ID())

	// Assert
	assert.Equal(s.T(), domain.ListingStatusCompleted, completed.Status())
	assert.NotNil(s.T(), completed.CompletedAt())
	assert.ErrorIs(s.T(), expireErr, domain.ErrKindInvalidStateTransition)
}

func (s *ListingUsecaseTestSuite) TestRestoreListing_CompletedStaysCompleted() {
	// Arrange
	l, err := s.uc.CreateFixedPriceListing(s.ctx, s.command("Desk"), domain.MustMoney("80.00", "USD"))
	s.Require().NoError(err)
	_, err = s.uc.MarkListingCompleted(s.ctx, l.ID(), s.seller)
	s.Require().NoError(err)
	s.Require().NoError(s.uc.DeleteListing(s.ctx, l.ID(), s.seller))

	// Act
	restored, err := s.uc.RestoreListing(s.ctx, l.ID(), s.seller)

	// Assert
	s.Require().NoError(err)
	assert.Equal(s.T(), domain.ListingStatusCompleted, restored.Status())
	assert.False(s.T(), restored.IsDeleted())
	_, priceErr := s.uc.UpdateListing(s.ctx, UpdateListingCommand{
		ListingID:   l.ID(),
		RequesterID: s.seller,
		Price:       lo.ToPtr(domain.MustMoney("90.00", "USD")),
	})
	assert.ErrorIs(s.T(), priceErr, domain.ErrKindInvalidStateTransition)
}

func (s *ListingUsecaseTestSuite) TestExpireDueListings() {
	// Arrange
	free, err := s.uc.CreateFreeListing(s.ctx, s.command("Couch"))
	s.Require().NoError(err)

	fixedItem := domain.NewItemID()
	s.items.On("OwnerOf", mock.Anything, fixedItem).Return(s.seller, nil)
	fixedCmd := s.command("Desk")
	fixedCmd.ItemID = fixedItem
	_, err = s.uc.CreateFixedPriceListing(s.ctx, fixedCmd, domain.MustMoney("80.00", "USD"))
	s.Require().NoError(err)

	// Act
	none, err := s.uc.ExpireDueListings(s.ctx, time.Now(), 10)
	s.Require().NoError(err)
	expired, err := s.uc.ExpireDueListings(s.ctx, time.Now().Add(31*24*time.Hour), 10)
	s.Require().NoError(err)

	// Assert
	assert.Equal(s.T(), 0, none)
	assert.Equal(s.T(), 1, expired)
	found, err := s.repo.FindByID(s.ctx, free.ID())
	s.Require().NoError(err)
	assert.Equal(s.T(), domain.ListingStatusExpired, found.Status())
}

func TestCreate_MissingItemOwnerIsNotFound(t *testing.T) {
	// Arrange
	store := memory.NewStore()
	uc := NewListingUsecase(memory.NewListingRepository(store), memory.NewItemOwnership(store),
		memory.NewUnitOfWork(store), nil, log.DefaultLogger)

	// Act
	_, err := uc.CreateFreeListing(context.Background(), CreateListingCommand{
		RequesterID: domain.NewSellerID(),
		ItemID:      domain.NewItemID(),
		CategoryID:  domain.NewCategoryID(),
		Title:       "Couch",
		Description: "Comfy",
		Location:    domain.MustLocation(0, 0),
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}
