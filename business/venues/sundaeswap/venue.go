// Package sundaeswap implements the SundaeSwap DEX venue.
package sundaeswap

import (
	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/business/venues/ammvenue"
	"github.com/cardex/gateway/internal/asset"
)

// Name is the connector name clients address this venue by.
const Name = "sundaeswap"

const (
	// scooperFeeLovelace is the flat protocol fee paid to the scooper
	// that executes the order on chain.
	scooperFeeLovelace = 2_500_000
	// networkFeeLovelace is the flat transaction fee estimate.
	networkFeeLovelace = 500_000
)

// Venue is the SundaeSwap spot venue for one network.
type Venue struct {
	*ammvenue.Core
}

// New creates the venue for one network.
func New(network, defaultPoolID string, slippagePct uint64, deps ammvenue.Deps) *Venue {
	cfg := ammvenue.Config{
		Name:          Name,
		Network:       network,
		DefaultPoolID: defaultPoolID,
		SlippagePct:   slippagePct,
		NetworkFee:    asset.NewAmountFromUint64(asset.ADA, networkFeeLovelace),
	}
	return &Venue{Core: ammvenue.NewCore(cfg, deps, addScooperFee)}
}

// addScooperFee folds the flat scooper fee into buy-side spend amounts.
// The fee is charged in the native currency, so only quotes spending it
// carry the adjustment; sell-side receipts are not reduced because the
// scooper fee is settled separately from the pool output.
func addScooperFee(q *domain.Quote) {
	if q.Side != domain.SideBuy || !q.Quote.IsNative() {
		return
	}
	fee := asset.NewAmountFromUint64(q.Quote, scooperFeeLovelace)
	if in, err := q.ExpectedIn.Add(fee); err == nil {
		q.ExpectedIn = in
	}
	if limit, err := q.Limit.Add(fee); err == nil {
		q.Limit = limit
	}
}
