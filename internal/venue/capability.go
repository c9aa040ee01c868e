// Package venue dispatches requests to trading venues by declared
// capability. A venue registers the operations it supports up front;
// requests for anything else fail fast instead of probing the concrete
// type at runtime.
package venue

import "strings"

// Capability is a bitmask of operations a venue supports.
type Capability uint32

// Spot (AMM) capabilities.
const (
	CapQuote Capability = 1 << iota
	CapTrade
	CapLiquidity
	CapPoolPrice
	CapGasEstimate

	// Perpetuals capabilities. Disjoint from the spot set: a venue
	// declares one family or the other.
	CapMarketPrice
	CapTakerOrder
	CapPositionRead
	CapPairList
)

// CapSpotFull is the full spot venue capability set.
const CapSpotFull = CapQuote | CapTrade | CapLiquidity | CapPoolPrice | CapGasEstimate

var capNames = []struct {
	cap  Capability
	name string
}{
	{CapQuote, "quote"},
	{CapTrade, "trade"},
	{CapLiquidity, "liquidity"},
	{CapPoolPrice, "pool-price"},
	{CapGasEstimate, "gas-estimate"},
	{CapMarketPrice, "market-price"},
	{CapTakerOrder, "taker-order"},
	{CapPositionRead, "position-read"},
	{CapPairList, "pair-list"},
}

// Has reports whether c includes every bit of required.
func (c Capability) Has(required Capability) bool {
	return c&required == required
}

// String returns the capability names, comma separated.
func (c Capability) String() string {
	var parts []string
	for _, cn := range capNames {
		if c&cn.cap != 0 {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}
