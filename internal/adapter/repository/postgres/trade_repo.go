package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carteiralab/carteira-backend/internal/domain"
)

// tradeRepository implements domain.TradeRepository
type tradeRepository struct {
	db *DB
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *DB) domain.TradeRepository {
	return &tradeRepository{db: db}
}

// Append writes one immutable trade record
func (r *tradeRepository) Append(ctx context.Context, trade *domain.Trade) error {
	query := `
		INSERT INTO trades (id, position_id, side, unit_price, quantity, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID,
		trade.PositionID,
		string(trade.Side),
		trade.UnitPrice.String(),
		trade.Quantity.String(),
		trade.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

// ListByOwner retrieves the owner's trades, newest first, optionally bounded
// by an execution-date window. Ownership is resolved through the position.
func (r *tradeRepository) ListByOwner(ctx context.Context, owner uuid.UUID, from, to *time.Time) ([]*domain.Trade, error) {
	query := `
		SELECT t.id, t.position_id, t.side, t.unit_price, t.quantity, t.executed_at
		FROM trades t
		JOIN positions p ON p.id = t.position_id
		WHERE p.owner_id = $1
	`
	args := []interface{}{owner}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND t.executed_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND t.executed_at <= $%d", len(args))
	}
	query += " ORDER BY t.executed_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		var trade domain.Trade
		var priceStr, quantityStr string

		err := rows.Scan(
			&trade.ID,
			&trade.PositionID,
			&trade.Side,
			&priceStr,
			&quantityStr,
			&trade.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		if trade.UnitPrice, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit_price: %w", err)
		}
		if trade.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return nil, fmt.Errorf("failed to parse quantity: %w", err)
		}

		trades = append(trades, &trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}

// Delete removes a trade owned by the given owner. The owning position's
// state is NOT recomputed.
func (r *tradeRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	query := `
		DELETE FROM trades t
		USING positions p
		WHERE t.id = $1 AND p.id = t.position_id AND p.owner_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrTradeNotFound
	}

	return nil
}
