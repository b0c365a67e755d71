package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTradeInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   TradeInput
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid BUY should pass",
			input: TradeInput{
				Ticker:    "PETR4",
				Side:      SideBuy,
				Quantity:  decimal.NewFromInt(100),
				UnitPrice: decimal.NewFromFloat(28.50),
			},
			wantErr: false,
		},
		{
			name: "Valid SELL should pass",
			input: TradeInput{
				Ticker:    "PETR4",
				Side:      SideSell,
				Quantity:  decimal.NewFromFloat(0.5),
				UnitPrice: decimal.NewFromFloat(31.00),
			},
			wantErr: false,
		},
		{
			name: "Missing ticker should fail",
			input: TradeInput{
				Side:      SideBuy,
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "trade ticker cannot be empty",
		},
		{
			name: "Unknown side should fail",
			input: TradeInput{
				Ticker:    "PETR4",
				Side:      Side("HOLD"),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "trade side must be BUY or SELL",
		},
		{
			name: "Zero quantity should fail",
			input: TradeInput{
				Ticker:    "PETR4",
				Side:      SideBuy,
				Quantity:  decimal.Zero,
				UnitPrice: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "trade quantity must be positive",
		},
		{
			name: "Negative quantity should fail",
			input: TradeInput{
				Ticker:    "PETR4",
				Side:      SideSell,
				Quantity:  decimal.NewFromInt(-5),
				UnitPrice: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "trade quantity must be positive",
		},
		{
			name: "Zero unit price should fail",
			input: TradeInput{
				Ticker:    "PETR4",
				Side:      SideBuy,
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.Zero,
			},
			wantErr: true,
			errMsg:  "trade unit price must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResult_Constructors(t *testing.T) {
	ok := Success("PETR4", decimal.NewFromFloat(29.33))
	assert.True(t, ok.Succeeded())
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, "PETR4", ok.Ticker)

	rej := Rejected("VALE3", ReasonInsufficientBalance)
	assert.False(t, rej.Succeeded())
	assert.Equal(t, StatusRejected, rej.Status)
	assert.Equal(t, ReasonInsufficientBalance, rej.Reason)

	fail := Failed("ITUB4", assert.AnError)
	assert.False(t, fail.Succeeded())
	assert.Equal(t, StatusFailed, fail.Status)
	assert.Equal(t, assert.AnError, fail.Cause)
}
