package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carteiralab/carteira-backend/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// positionRepository implements domain.PositionRepository
type positionRepository struct {
	db *DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

const positionColumns = `id, owner_id, ticker, asset_class, sector, currency, quantity, avg_unit_cost, current_price, updated_at`

// GetByOwnerAndTicker retrieves a position by its (owner, ticker) key.
// A missing position is not an error: it returns (nil, nil).
func (r *positionRepository) GetByOwnerAndTicker(ctx context.Context, owner uuid.UUID, ticker string) (*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE owner_id = $1 AND ticker = $2
	`

	position, err := scanPosition(r.db.QueryRowContext(ctx, query, owner, ticker))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get position by owner and ticker: %w", err)
	}
	return position, nil
}

// Create creates a new position
func (r *positionRepository) Create(ctx context.Context, position *domain.Position) error {
	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		position.ID,
		position.OwnerID,
		position.Ticker,
		position.AssetClass,
		position.Sector,
		position.Currency,
		position.Quantity.String(),
		position.AvgUnitCost.String(),
		position.CurrentPrice.String(),
		position.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrTickerExists
		}
		return fmt.Errorf("failed to create position: %w", err)
	}

	return nil
}

// UpdateState overwrites the mutable numeric fields and the timestamp
func (r *positionRepository) UpdateState(ctx context.Context, id uuid.UUID, quantity, avgUnitCost decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE positions
		SET quantity = $2, avg_unit_cost = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity.String(), avgUnitCost.String(), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update position state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrPositionNotFound
	}

	return nil
}

// ListByOwner retrieves all positions held by the given owner
func (r *positionRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE owner_id = $1
		ORDER BY ticker
	`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}

// CreateMany inserts a batch of positions in one database transaction
func (r *positionRepository) CreateMany(ctx context.Context, positions []*domain.Position) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, position := range positions {
		_, err := dbTx.ExecContext(ctx, query,
			position.ID,
			position.OwnerID,
			position.Ticker,
			position.AssetClass,
			position.Sector,
			position.Currency,
			position.Quantity.String(),
			position.AvgUnitCost.String(),
			position.CurrentPrice.String(),
			position.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return domain.ErrTickerExists
			}
			return fmt.Errorf("failed to insert position %s: %w", position.Ticker, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position batch: %w", err)
	}

	return nil
}

// Delete removes a position owned by the given owner
func (r *positionRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	query := `DELETE FROM positions WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrPositionNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPosition reads one position row, parsing the DECIMAL columns from
// their string form.
func scanPosition(row rowScanner) (*domain.Position, error) {
	var position domain.Position
	var quantityStr, avgCostStr, currentPriceStr string

	err := row.Scan(
		&position.ID,
		&position.OwnerID,
		&position.Ticker,
		&position.AssetClass,
		&position.Sector,
		&position.Currency,
		&quantityStr,
		&avgCostStr,
		&currentPriceStr,
		&position.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if position.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	if position.AvgUnitCost, err = decimal.NewFromString(avgCostStr); err != nil {
		return nil, fmt.Errorf("failed to parse avg_unit_cost: %w", err)
	}
	if position.CurrentPrice, err = decimal.NewFromString(currentPriceStr); err != nil {
		return nil, fmt.Errorf("failed to parse current_price: %w", err)
	}

	return &position, nil
}
