package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListingType(t *testing.T) {
	for _, lt := range ListingTypes() {
		got, err := ParseListingType(lt.String())
		require.NoError(t, err)
		assert.Equal(t, lt, got)
	}

	_, err := ParseListingType("barter")
	assert.ErrorIs(t, err, ErrInvalidListingType)
}

func TestListingType_HasAuctionSettings(t *testing.T) {
	assert.False(t, ListingTypeFree.HasAuctionSettings())
	assert.False(t, ListingTypeFixedPrice.HasAuctionSettings())
	assert.True(t, ListingTypeFreeToAuction.HasAuctionSettings())
	assert.True(t, ListingTypeForwardAuction.HasAuctionSettings())
	assert.True(t, ListingTypeReverseAuction.HasAuctionSettings())
	assert.Panics(t, func() { ListingType("barter").HasAuctionSettings() })
}

func TestParseListingStatus(t *testing.T) {
	st, err := ParseListingStatus("active")
	require.NoError(t, err)
	assert.Equal(t, ListingStatusActive, st)
	assert.False(t, st.IsTerminal())
	assert.True(t, ListingStatusExpired.IsTerminal())
	assert.True(t, ListingStatusCompleted.IsTerminal())

	_, err = ParseListingStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseIDs(t *testing.T) {
	id := NewListingID()

	parsed, err := ParseListingID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseSellerID("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = ParseItemID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNewTitleAndDescription(t *testing.T) {
	title, err := NewTitle("  Couch  ")
	require.NoError(t, err)
	assert.Equal(t, "Couch", title.String())

	_, err = NewTitle("   ")
	assert.ErrorIs(t, err, ErrInvalidTitle)

	long := make([]rune, MaxTitleLength+1)
	for i := range long {
		long[i] = 'é'
	}
	_, err = NewTitle(string(long))
	assert.ErrorIs(t, err, ErrInvalidTitle)

	_, err = NewTitle(string(long[:MaxTitleLength]))
	assert.NoError(t, err)

	_, err = NewDescription("")
	assert.ErrorIs(t, err, ErrInvalidDescription)
}
