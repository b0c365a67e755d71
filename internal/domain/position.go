package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Defaults applied when a position is created lazily by the ledger and the
// caller did not supply asset metadata.
const (
	DefaultAssetClass = "stock"
	DefaultCurrency   = "BRL"
)

// Sentinel errors returned by PositionRepository implementations.
var (
	// ErrTickerExists is returned by Create when the (owner, ticker) pair
	// already has a position.
	ErrTickerExists = errors.New("position already exists for ticker")

	// ErrPositionNotFound is returned by UpdateState and Delete when the
	// position id does not exist (or belongs to another owner).
	ErrPositionNotFound = errors.New("position not found")
)

// Position represents a user's current holding in one asset.
// One row exists per (OwnerID, Ticker); Quantity and AvgUnitCost are the only
// fields the ledger engine mutates, always together and always through
// PositionRepository.UpdateState.
type Position struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Ticker      string
	AssetClass  string // free-form category, set at creation only
	Sector      string // optional, set at creation only
	Currency    string // fixed at creation
	Quantity    decimal.Decimal
	AvgUnitCost decimal.Decimal
	// CurrentPrice is the last known market quote. It starts equal to the
	// average cost on manual/import creation and is zero for positions the
	// ledger creates lazily. Valuation falls back to AvgUnitCost when zero.
	CurrentPrice decimal.Decimal
	UpdatedAt    time.Time
}

// Validate ensures the position adheres to domain rules.
// Returns an error if validation fails.
func (p *Position) Validate() error {
	if p.OwnerID == uuid.Nil {
		return errors.New("position owner cannot be empty")
	}
	if p.Ticker == "" {
		return errors.New("position ticker cannot be empty")
	}
	if p.Quantity.IsNegative() {
		return errors.New("position quantity cannot be negative")
	}
	if p.AvgUnitCost.IsNegative() {
		return errors.New("position average unit cost cannot be negative")
	}
	return nil
}

// MarketPrice returns the price used for portfolio valuation: the last known
// quote, or the average unit cost when no quote has been recorded yet.
func (p *Position) MarketPrice() decimal.Decimal {
	if p.CurrentPrice.IsPositive() {
		return p.CurrentPrice
	}
	return p.AvgUnitCost
}

// MarketValue returns Quantity * MarketPrice.
func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.MarketPrice())
}

// NewPosition builds an empty position for the given owner and ticker,
// applying the metadata defaults. The returned position has zero quantity and
// zero average cost; the ledger engine fills those in via the update rule.
func NewPosition(owner uuid.UUID, ticker, assetClass, sector string) *Position {
	if assetClass == "" {
		assetClass = DefaultAssetClass
	}
	return &Position{
		ID:           uuid.New(),
		OwnerID:      owner,
		Ticker:       ticker,
		AssetClass:   assetClass,
		Sector:       sector,
		Currency:     DefaultCurrency,
		Quantity:     decimal.Zero,
		AvgUnitCost:  decimal.Zero,
		CurrentPrice: decimal.Zero,
		UpdatedAt:    time.Now(),
	}
}
