package valueobject

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinAuctionDuration = time.Hour
	MaxAuctionDuration = 30 * 24 * time.Hour
)

var (
	bidIncrementRate  = decimal.RequireFromString("0.05")
	bidIncrementFloor = decimal.NewFromInt(1)
)

// AuctionSettings configures an auction-type listing. Values are only built
// through the ForXxx constructors so the price and duration rules always hold.
type AuctionSettings struct {
	startingPrice       Money
	reservePrice        *Money
	buyNowPrice         *Money
	maxPrice            *Money
	duration            time.Duration
	minimumBidIncrement Money
	autoBidEnabled      bool
}

// AuctionSettingsState is the flat form used to persist and restore settings.
type AuctionSettingsState struct {
	StartingPrice       Money
	ReservePrice        *Money
	BuyNowPrice         *Money
	MaxPrice            *Money
	Duration            time.Duration
	MinimumBidIncrement Money
	AutoBidEnabled      bool
}

// ForForwardAuction builds settings for an ascending auction. reserve and
// buyNow are optional but must not undercut the starting price.
func ForForwardAuction(starting Money, reserve, buyNow *Money, duration time.Duration) (AuctionSettings, error) {
	if err := validateDuration(duration); err != nil {
		return AuctionSettings{}, err
	}
	if err := notBelow(reserve, starting, "reserve price"); err != nil {
		return AuctionSettings{}, err
	}
	if err := notBelow(buyNow, starting, "buy-now price"); err != nil {
		return AuctionSettings{}, err
	}

	return AuctionSettings{
		startingPrice:       starting,
		reservePrice:        reserve,
		buyNowPrice:         buyNow,
		duration:            duration,
		minimumBidIncrement: MinimumBidIncrementFor(starting),
		autoBidEnabled:      true,
	}, nil
}

// ForReverseAuction builds settings for a descending auction where sellers bid
// down from maxPrice.
func ForReverseAuction(maxPrice Money, duration time.Duration) (AuctionSettings, error) {
	if err := validateDuration(duration); err != nil {
		return AuctionSettings{}, err
	}
	if maxPrice.IsZero() {
		return AuctionSettings{}, fmt.Errorf("%w: max price must be positive", ErrInvalidAuction)
	}

	return AuctionSettings{
		startingPrice:       maxPrice,
		maxPrice:            &maxPrice,
		duration:            duration,
		minimumBidIncrement: MinimumBidIncrementFor(maxPrice),
		autoBidEnabled:      false,
	}, nil
}

// ForFreeToAuction builds the duration-only settings of a giveaway that turns
// into an auction on its first bid.
func ForFreeToAuction(duration time.Duration, currency string) (AuctionSettings, error) {
	if err := validateDuration(duration); err != nil {
		return AuctionSettings{}, err
	}

	zero, err := NewMoney(decimal.Zero, currency)
	if err != nil {
		return AuctionSettings{}, err
	}

	return AuctionSettings{
		startingPrice:       zero,
		duration:            duration,
		minimumBidIncrement: MinimumBidIncrementFor(zero),
		autoBidEnabled:      true,
	}, nil
}

// RestoreAuctionSettings rebuilds settings from persisted state without re-deriving them.
func RestoreAuctionSettings(s AuctionSettingsState) AuctionSettings {
	return AuctionSettings{
		startingPrice:       s.StartingPrice,
		reservePrice:        s.ReservePrice,
		buyNowPrice:         s.BuyNowPrice,
		maxPrice:            s.MaxPrice,
		duration:            s.Duration,
		minimumBidIncrement: s.MinimumBidIncrement,
		autoBidEnabled:      s.AutoBidEnabled,
	}
}

// MinimumBidIncrementFor returns max(5% of base, 1.00) rounded to cents.
func MinimumBidIncrementFor(base Money) Money {
	inc := base.Percent(bidIncrementRate)
	if inc.Amount().LessThan(bidIncrementFloor) {
		return Money{amount: bidIncrementFloor.Round(2), currency: base.Currency()}
	}
	return inc
}

// State returns the flat form of the settings.
func (a AuctionSettings) State() AuctionSettingsState {
	return AuctionSettingsState{
		StartingPrice:       a.startingPrice,
		ReservePrice:        a.reservePrice,
		BuyNowPrice:         a.buyNowPrice,
		MaxPrice:            a.maxPrice,
		Duration:            a.duration,
		MinimumBidIncrement: a.minimumBidIncrement,
		AutoBidEnabled:      a.autoBidEnabled,
	}
}

func (a AuctionSettings) StartingPrice() Money {
	return a.startingPrice
}

func (a AuctionSettings) ReservePrice() *Money {
	return a.reservePrice
}

func (a AuctionSettings) BuyNowPrice() *Money {
	return a.buyNowPrice
}

func (a AuctionSettings) MaxPrice() *Money {
	return a.maxPrice
}

func (a AuctionSettings) Duration() time.Duration {
	return a.duration
}

func (a AuctionSettings) MinimumBidIncrement() Money {
	return a.minimumBidIncrement
}

func (a AuctionSettings) AutoBidEnabled() bool {
	return a.autoBidEnabled
}

// WithStartingPrice returns a copy re-based on a new starting price, used when
// a giveaway converts on its first bid.
func (a AuctionSettings) WithStartingPrice(starting Money) AuctionSettings {
	a.startingPrice = starting
	a.minimumBidIncrement = MinimumBidIncrementFor(starting)
	return a
}

func validateDuration(d time.Duration) error {
	if d < MinAuctionDuration || d > MaxAuctionDuration {
		return fmt.Errorf("%w: duration %s must be between %s and %s",
			ErrInvalidAuction, d, MinAuctionDuration, MaxAuctionDuration)
	}
	return nil
}

func notBelow(price *Money, starting Money, name string) error {
	if price == nil {
		return nil
	}

	ok, err := price.GreaterThanOrEqual(starting)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAuction, name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %s is below starting price %s", ErrInvalidAuction, name, price, starting)
	}
	return nil
}
