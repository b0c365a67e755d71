package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionRepository defines the interface for position persistence operations
type PositionRepository interface {
	// GetByOwnerAndTicker retrieves a position by its (owner, ticker) key.
	// Absence is not an error: it returns (nil, nil) when no position
	// exists, and the caller must branch on the nil position.
	GetByOwnerAndTicker(ctx context.Context, owner uuid.UUID, ticker string) (*Position, error)

	// Create creates a new position
	// Returns ErrTickerExists if the (owner, ticker) pair already exists
	Create(ctx context.Context, position *Position) error

	// UpdateState overwrites the mutable numeric fields and the timestamp
	// Returns ErrPositionNotFound if the id no longer exists
	UpdateState(ctx context.Context, id uuid.UUID, quantity, avgUnitCost decimal.Decimal, updatedAt time.Time) error

	// ListByOwner retrieves all positions held by the given owner
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*Position, error)

	// CreateMany inserts a batch of positions in one transaction
	// Used by the bulk portfolio-import path, which seeds non-zero state
	CreateMany(ctx context.Context, positions []*Position) error

	// Delete removes a position owned by the given owner
	// Administrative operation; trade history is left untouched
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// TradeRepository defines the interface for trade history persistence operations
type TradeRepository interface {
	// Append writes one immutable trade record
	Append(ctx context.Context, trade *Trade) error

	// ListByOwner retrieves the owner's trades, newest first
	// from and to bound ExecutedAt when non-nil
	ListByOwner(ctx context.Context, owner uuid.UUID, from, to *time.Time) ([]*Trade, error)

	// Delete removes a trade owned by the given owner
	// Administrative reversal; position state is NOT recomputed
	Delete(ctx context.Context, owner, id uuid.UUID) error
}
