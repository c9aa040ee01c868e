package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardex/gateway/internal/ammath"
	"github.com/cardex/gateway/internal/asset"
)

// Quote is a priced swap against one pool snapshot. Expected amounts come
// from the AMM formula with the fee applied inside; the limit amount is
// the separate slippage bound.
type Quote struct {
	PoolID string
	Side   Side
	Base   *asset.Asset
	Quote  *asset.Asset

	// ExpectedIn is spent, ExpectedOut received, regardless of side.
	ExpectedIn  asset.Amount
	ExpectedOut asset.Amount

	// Limit is the slippage bound: minimum received for SELL, maximum
	// spent for BUY.
	Limit       asset.Amount
	SlippagePct uint64

	Fee         ammath.Fee
	GasEstimate asset.Amount
}

// UnitPrice returns the effective price in quote units per base unit.
// Display only; the raw amounts remain authoritative.
func (q *Quote) UnitPrice() decimal.Decimal {
	var baseAmt, quoteAmt asset.Amount
	if q.Side == SideSell {
		baseAmt, quoteAmt = q.ExpectedIn, q.ExpectedOut
	} else {
		baseAmt, quoteAmt = q.ExpectedOut, q.ExpectedIn
	}
	if baseAmt.IsZero() {
		return decimal.Zero
	}
	return quoteAmt.ToDecimal().DivRound(baseAmt.ToDecimal(), 10)
}

// PricePoint is one bucket of a pool price series.
type PricePoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// PriceSeries is the pool price expanded over period/interval buckets.
type PriceSeries struct {
	PoolID   string
	Base     *asset.Asset
	Quote    *asset.Asset
	Interval time.Duration
	Points   []PricePoint
}
