package httpapi

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteiralab/carteira-backend/internal/domain"
	"github.com/carteiralab/carteira-backend/internal/usecase/portfolio"
)

// tradeRequest is the wire form of one submitted trade event. Field names
// follow the public API contract (a trade's "value" is its unit price).
type tradeRequest struct {
	Ticker     string          `json:"ticker"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Quantity   decimal.Decimal `json:"quantity"`
	Date       string          `json:"date,omitempty"`
	AssetClass string          `json:"asset_class,omitempty"`
	Sector     string          `json:"sector,omitempty"`
}

// toInput converts the request to a domain trade input. Only the date needs
// parsing here; business validation belongs to the ledger.
func (r tradeRequest) toInput() (domain.TradeInput, error) {
	input := domain.TradeInput{
		Ticker:     r.Ticker,
		Side:       domain.Side(r.Type),
		Quantity:   r.Quantity,
		UnitPrice:  r.Value,
		AssetClass: r.AssetClass,
		Sector:     r.Sector,
	}
	if r.Date != "" {
		executedAt, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return domain.TradeInput{}, fmt.Errorf("invalid date %q: must be RFC 3339", r.Date)
		}
		input.ExecutedAt = executedAt
	}
	return input, nil
}

// tradeResultResponse is the per-event outcome payload.
type tradeResultResponse struct {
	Ticker      string           `json:"ticker"`
	Status      string           `json:"status"`
	NewAvgPrice *decimal.Decimal `json:"new_avg_price,omitempty"`
	Error       string           `json:"error,omitempty"`
}

func toTradeResultResponse(result domain.Result) tradeResultResponse {
	resp := tradeResultResponse{
		Ticker: result.Ticker,
		Status: string(result.Status),
	}
	switch result.Status {
	case domain.StatusSuccess:
		avg := result.NewAvgPrice
		resp.NewAvgPrice = &avg
	case domain.StatusRejected:
		resp.Error = result.Reason
	case domain.StatusFailed:
		resp.Error = "internal error processing transaction"
	}
	return resp
}

// tradeResponse is the wire form of one history record.
type tradeResponse struct {
	ID         string          `json:"id"`
	PositionID string          `json:"position_id"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExecutedAt time.Time       `json:"transaction_date"`
}

func toTradeResponse(trade *domain.Trade) tradeResponse {
	return tradeResponse{
		ID:         trade.ID.String(),
		PositionID: trade.PositionID.String(),
		Type:       string(trade.Side),
		Value:      trade.UnitPrice,
		Quantity:   trade.Quantity,
		ExecutedAt: trade.ExecutedAt,
	}
}

// positionRequest is the wire form of a manually added or imported position.
type positionRequest struct {
	Ticker      string          `json:"ticker"`
	AssetClass  string          `json:"type,omitempty"`
	Sector      string          `json:"sector,omitempty"`
	Currency    string          `json:"currency,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgUnitCost decimal.Decimal `json:"avg_price"`
}

func (r positionRequest) toInput() portfolio.PositionInput {
	return portfolio.PositionInput{
		Ticker:      r.Ticker,
		AssetClass:  r.AssetClass,
		Sector:      r.Sector,
		Currency:    r.Currency,
		Quantity:    r.Quantity,
		AvgUnitCost: r.AvgUnitCost,
	}
}

// positionResponse is the wire form of one position.
type positionResponse struct {
	ID           string          `json:"id"`
	Ticker       string          `json:"ticker"`
	AssetClass   string          `json:"type"`
	Sector       string          `json:"sector,omitempty"`
	Currency     string          `json:"currency"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgUnitCost  decimal.Decimal `json:"avg_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toPositionResponse(position *domain.Position) positionResponse {
	return positionResponse{
		ID:           position.ID.String(),
		Ticker:       position.Ticker,
		AssetClass:   position.AssetClass,
		Sector:       position.Sector,
		Currency:     position.Currency,
		Quantity:     position.Quantity,
		AvgUnitCost:  position.AvgUnitCost,
		CurrentPrice: position.CurrentPrice,
		UpdatedAt:    position.UpdatedAt,
	}
}

// portfolioResponse is the consolidated GET /assets payload.
type portfolioResponse struct {
	TotalConsolidated decimal.Decimal    `json:"total_consolidated"`
	Count             int                `json:"count"`
	Assets            []positionResponse `json:"assets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
