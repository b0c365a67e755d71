package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/carteiralab/carteira-backend/internal/domain"
)

// LedgerService applies trade events to portfolio state under the
// weighted-average-cost rule and records the immutable trade history.
type LedgerService struct {
	PositionRepo domain.PositionRepository
	TradeRepo    domain.TradeRepository

	logger *zap.Logger
	locks  *positionLocks
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(positionRepo domain.PositionRepository, tradeRepo domain.TradeRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		PositionRepo: positionRepo,
		TradeRepo:    tradeRepo,
		logger:       logger,
		locks:        newPositionLocks(),
	}
}

// Submit processes one trade event for the given owner.
// Logic:
//  1. Validate the input; invalid events are rejected without touching storage
//  2. Resolve the position, creating it on a first BUY (never on a SELL)
//  3. Apply the weighted-average-cost update rule
//  4. Persist the new position state
//  5. Append the trade to the history
//
// The whole read-modify-write runs under a per-(owner, ticker) lock so that
// concurrent submissions for the same position cannot lose updates.
// All outcomes are reported as a domain.Result, never as an error.
func (s *LedgerService) Submit(ctx context.Context, owner uuid.UUID, input domain.TradeInput) domain.Result {
	if err := input.Validate(); err != nil {
		return domain.Rejected(input.Ticker, err.Error())
	}

	unlock := s.locks.acquire(owner, input.Ticker)
	defer unlock()

	// 1. Resolve or create the position
	position, result := s.resolvePosition(ctx, owner, input)
	if position == nil {
		return result
	}

	// 2. Apply the update rule
	newQty, newAvg, rejection := applyTrade(position, input)
	if rejection != "" {
		return domain.Rejected(input.Ticker, rejection)
	}

	// 3. Persist the new position state
	now := time.Now()
	if err := s.PositionRepo.UpdateState(ctx, position.ID, newQty, newAvg, now); err != nil {
		return domain.Failed(input.Ticker, fmt.Errorf("failed to update position state: %w", err))
	}

	// 4. Append the history record
	executedAt := input.ExecutedAt
	if executedAt.IsZero() {
		executedAt = now
	}
	trade := &domain.Trade{
		ID:         uuid.New(),
		PositionID: position.ID,
		Side:       input.Side,
		UnitPrice:  input.UnitPrice,
		Quantity:   input.Quantity,
		ExecutedAt: executedAt,
	}
	if err := s.TradeRepo.Append(ctx, trade); err != nil {
		// The position update above already took effect and is not rolled
		// back: position state and history disagree until someone
		// reconciles them. Logged loudly for exactly that reason.
		s.logger.Error("trade history append failed after position update",
			zap.String("owner", owner.String()),
			zap.String("ticker", input.Ticker),
			zap.String("side", string(input.Side)),
			zap.String("quantity", input.Quantity.String()),
			zap.Error(err),
		)
		return domain.Failed(input.Ticker, fmt.Errorf("trade history write failed: %w", err))
	}

	return domain.Success(input.Ticker, newAvg)
}

// SubmitBatch processes a sequence of trade events for one owner, in order,
// collecting each individual outcome. Events are independent: one rejection
// or failure neither blocks subsequent events nor rolls back earlier ones.
func (s *LedgerService) SubmitBatch(ctx context.Context, owner uuid.UUID, inputs []domain.TradeInput) []domain.Result {
	results := make([]domain.Result, 0, len(inputs))
	for _, input := range inputs {
		results = append(results, s.Submit(ctx, owner, input))
	}
	return results
}

// History retrieves the owner's trade records, newest first, optionally
// bounded by an execution-date window.
func (s *LedgerService) History(ctx context.Context, owner uuid.UUID, from, to *time.Time) ([]*domain.Trade, error) {
	return s.TradeRepo.ListByOwner(ctx, owner, from, to)
}

// Reverse removes a single trade record. This is an administrative estorno:
// the record disappears from the history but position state is deliberately
// NOT recomputed.
func (s *LedgerService) Reverse(ctx context.Context, owner, tradeID uuid.UUID) error {
	return s.TradeRepo.Delete(ctx, owner, tradeID)
}

// resolvePosition looks up the working position for the event. When the
// position does not exist: a SELL is rejected (a sale cannot create a
// holding) and a BUY lazily creates an empty position using the event's
// asset metadata. Returns a nil position together with the terminal result
// when processing must stop.
func (s *LedgerService) resolvePosition(ctx context.Context, owner uuid.UUID, input domain.TradeInput) (*domain.Position, domain.Result) {
	position, err := s.PositionRepo.GetByOwnerAndTicker(ctx, owner, input.Ticker)
	if err != nil {
		return nil, domain.Failed(input.Ticker, fmt.Errorf("failed to look up position: %w", err))
	}
	if position != nil {
		return position, domain.Result{}
	}

	if input.Side == domain.SideSell {
		return nil, domain.Rejected(input.Ticker, domain.ReasonUnknownAsset)
	}

	position = domain.NewPosition(owner, input.Ticker, input.AssetClass, input.Sector)
	if err := s.PositionRepo.Create(ctx, position); err != nil {
		return nil, domain.Failed(input.Ticker, fmt.Errorf("failed to create position: %w", err))
	}
	s.logger.Info("position created",
		zap.String("owner", owner.String()),
		zap.String("ticker", input.Ticker),
		zap.String("asset_class", position.AssetClass),
	)
	return position, domain.Result{}
}

// applyTrade computes the next (quantity, average cost) pair for the
// position. A non-empty rejection reason means the event must not mutate
// anything.
//
// BUY recomputes the average as the quantity-weighted mean of the prior
// holdings and the new lot. SELL only reduces the quantity: the average cost
// of what remains is unchanged by a sale. A position sold down to exactly
// zero keeps its last average; the weighting by q=0 makes it irrelevant to
// the next BUY, so it is left in place rather than reset.
func applyTrade(position *domain.Position, input domain.TradeInput) (newQty, newAvg decimal.Decimal, rejection string) {
	q := position.Quantity
	p := position.AvgUnitCost

	switch input.Side {
	case domain.SideBuy:
		newQty = q.Add(input.Quantity)
		totalCost := q.Mul(p).Add(input.Quantity.Mul(input.UnitPrice))
		newAvg = totalCost.Div(newQty)
	case domain.SideSell:
		if q.LessThan(input.Quantity) {
			return decimal.Zero, decimal.Zero, domain.ReasonInsufficientBalance
		}
		newQty = q.Sub(input.Quantity)
		newAvg = p
	}
	return newQty, newAvg, ""
}
