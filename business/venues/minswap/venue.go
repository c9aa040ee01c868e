// Package minswap implements the Minswap DEX venue.
package minswap

import (
	"github.com/cardex/gateway/business/venues/ammvenue"
	"github.com/cardex/gateway/internal/asset"
)

// Name is the connector name clients address this venue by.
const Name = "minswap"

// batcherFeeLovelace is the flat batcher fee charged per order.
const batcherFeeLovelace = 2_000_000

// Venue is the Minswap spot venue for one network.
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
		NetworkFee:    asset.NewAmountFromUint64(asset.ADA, batcherFeeLovelace),
	}
	return &Venue{Core: ammvenue.NewCore(cfg, deps, nil)}
}
