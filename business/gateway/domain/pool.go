package domain

import (
	"errors"
	"math/big"

	"github.com/cardex/gateway/internal/ammath"
	"github.com/cardex/gateway/internal/asset"
)

// ErrPairMismatch is returned when a pool does not hold the requested pair.
var ErrPairMismatch = errors.New("pool does not hold the requested pair")

// PoolState is a point-in-time snapshot of one AMM pool. It is read once
// per request; every amount and bound for that request is derived from the
// same snapshot.
type PoolState struct {
	ID        string
	AssetA    *asset.Asset
	AssetB    *asset.Asset
	ReserveA  *big.Int
	ReserveB  *big.Int
	TotalLP   *big.Int
	LPAssetID asset.AssetID
	Fee       ammath.Fee
}

// Oriented holds a pool's reserves oriented to a (base, quote) pair.
type Oriented struct {
	ReserveBase  *big.Int
	ReserveQuote *big.Int
}

// Orient maps the pool's reserves onto the requested pair. The pool's
// stored A/B order is arbitrary; callers always work base/quote.
func (p *PoolState) Orient(base, quote *asset.Asset) (Oriented, error) {
	switch {
	case p.AssetA.Equals(base) && p.AssetB.Equals(quote):
		return Oriented{ReserveBase: p.ReserveA, ReserveQuote: p.ReserveB}, nil
	case p.AssetB.Equals(base) && p.AssetA.Equals(quote):
		return Oriented{ReserveBase: p.ReserveB, ReserveQuote: p.ReserveA}, nil
	default:
		return Oriented{}, ErrPairMismatch
	}
}

// Contains reports whether the pool holds the given asset.
func (p *PoolState) Contains(a *asset.Asset) bool {
	return p.AssetA.Equals(a) || p.AssetB.Equals(a)
}
