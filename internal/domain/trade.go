package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ErrTradeNotFound is returned by TradeRepository.Delete when the trade id
// does not exist (or belongs to another owner).
var ErrTradeNotFound = errors.New("trade not found")

// Trade represents one processed buy or sell event in the append-only
// history. Trades are immutable once written; they record what happened and
// never mutate the position themselves.
type Trade struct {
	ID         uuid.UUID
	PositionID uuid.UUID
	Side       Side
	UnitPrice  decimal.Decimal
	Quantity   decimal.Decimal
	ExecutedAt time.Time
}

// TradeInput is a submitted trade event, before it has been resolved against
// a position. ExecutedAt may be zero, in which case processing time is used.
type TradeInput struct {
	Ticker     string
	Side       Side
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	ExecutedAt time.Time
	AssetClass string // optional, used only when the position is created
	Sector     string // optional, used only when the position is created
}

// Validate ensures the trade input adheres to domain rules.
// Returns an error if validation fails.
func (in *TradeInput) Validate() error {
	if in.Ticker == "" {
		return errors.New("trade ticker cannot be empty")
	}
	if in.Side != SideBuy && in.Side != SideSell {
		return errors.New("trade side must be BUY or SELL")
	}
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("trade quantity must be positive")
	}
	if in.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("trade unit price must be positive")
	}
	return nil
}
