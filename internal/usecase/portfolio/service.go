package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carteiralab/carteira-backend/internal/domain"
)

// PositionInput represents a manually added or imported position. Quantity
// and AvgUnitCost seed the position state directly, bypassing the ledger:
// this is the migration path for holdings acquired before the user joined.
type PositionInput struct {
	Ticker      string
	AssetClass  string
	Sector      string
	Currency    string
	Quantity    decimal.Decimal
	AvgUnitCost decimal.Decimal
}

// Summary represents the owner's consolidated portfolio view.
type Summary struct {
	TotalValue decimal.Decimal
	Count      int
	Positions  []*domain.Position
}

// PortfolioService handles portfolio-level reads and administration
type PortfolioService struct {
	PositionRepo domain.PositionRepository
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(positionRepo domain.PositionRepository) *PortfolioService {
	return &PortfolioService{PositionRepo: positionRepo}
}

// GetSummary retrieves all of the owner's positions together with the
// consolidated portfolio value. Positions without a recorded quote are
// valued at their average cost.
func (s *PortfolioService) GetSummary(ctx context.Context, owner uuid.UUID) (*Summary, error) {
	positions, err := s.PositionRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(pos.MarketValue())
	}

	return &Summary{
		TotalValue: total,
		Count:      len(positions),
		Positions:  positions,
	}, nil
}

// AddPosition manually creates a single position with seeded state.
// The current price starts at the average cost paid.
func (s *PortfolioService) AddPosition(ctx context.Context, owner uuid.UUID, input PositionInput) (*domain.Position, error) {
	position, err := buildPosition(owner, input)
	if err != nil {
		return nil, err
	}
	if err := s.PositionRepo.Create(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

// Import bulk-creates positions for a portfolio migration. The whole batch
// is inserted together; a duplicate ticker fails the import.
func (s *PortfolioService) Import(ctx context.Context, owner uuid.UUID, inputs []PositionInput) (int, error) {
	if len(inputs) == 0 {
		return 0, errors.New("import requires at least one position")
	}

	positions := make([]*domain.Position, 0, len(inputs))
	for _, input := range inputs {
		position, err := buildPosition(owner, input)
		if err != nil {
			return 0, err
		}
		positions = append(positions, position)
	}

	if err := s.PositionRepo.CreateMany(ctx, positions); err != nil {
		return 0, err
	}
	return len(positions), nil
}

// Remove deletes a position from the owner's portfolio. Administrative:
// the trade history stays as recorded.
func (s *PortfolioService) Remove(ctx context.Context, owner, positionID uuid.UUID) error {
	return s.PositionRepo.Delete(ctx, owner, positionID)
}

// buildPosition assembles and validates a seeded position from caller input,
// applying the same metadata defaults the ledger uses.
func buildPosition(owner uuid.UUID, input PositionInput) (*domain.Position, error) {
	assetClass := input.AssetClass
	if assetClass == "" {
		assetClass = domain.DefaultAssetClass
	}
	currency := input.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	position := &domain.Position{
		ID:           uuid.New(),
		OwnerID:      owner,
		Ticker:       input.Ticker,
		AssetClass:   assetClass,
		Sector:       input.Sector,
		Currency:     currency,
		Quantity:     input.Quantity,
		AvgUnitCost:  input.AvgUnitCost,
		CurrentPrice: input.AvgUnitCost,
		UpdatedAt:    time.Now(),
	}
	if err := position.Validate(); err != nil {
		return nil, err
	}
	return position, nil
}
