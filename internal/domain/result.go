package domain

import "github.com/shopspring/decimal"

// ResultStatus classifies the outcome of one submitted trade event.
type ResultStatus string

const (
	// StatusSuccess: the position was updated and the trade recorded.
	StatusSuccess ResultStatus = "success"
	// StatusRejected: a business rule refused the event (oversell, sell of
	// an unknown ticker, invalid input). Nothing was mutated.
	StatusRejected ResultStatus = "rejected"
	// StatusFailed: a storage operation failed. The position may or may not
	// have been updated depending on where the failure happened; see
	// Result.Cause.
	StatusFailed ResultStatus = "failed"
)

// Rejection reasons surfaced to callers.
const (
	ReasonUnknownAsset        = "sell of nonexistent asset"
	ReasonInsufficientBalance = "insufficient balance"
)

// Result is the outcome of processing a single trade event. Exactly one of
// Reason or Cause is meaningful depending on Status.
type Result struct {
	Ticker      string
	Status      ResultStatus
	NewAvgPrice decimal.Decimal // set on success
	Reason      string          // set on rejection, user-facing
	Cause       error           // set on failure, internal
}

// Succeeded reports whether the event was fully applied.
func (r Result) Succeeded() bool { return r.Status == StatusSuccess }

// Success builds a success result carrying the recomputed average price.
func Success(ticker string, newAvg decimal.Decimal) Result {
	return Result{Ticker: ticker, Status: StatusSuccess, NewAvgPrice: newAvg}
}

// Rejected builds a business-rule rejection result.
func Rejected(ticker, reason string) Result {
	return Result{Ticker: ticker, Status: StatusRejected, Reason: reason}
}

// Failed builds an internal-failure result.
func Failed(ticker string, cause error) Result {
	return Result{Ticker: ticker, Status: StatusFailed, Cause: cause}
}
