package ammath

import "math/big"

// Slippage tolerance is applied AFTER the AMM formula, as a separate bound
// on the already fee-adjusted amount. Percentages are whole-number percents
// matching venue configuration; division truncates toward zero, so a
// minimum-received bound is never rounded up.

var hundred = big.NewInt(100)

// MinimumReceived discounts amount by tolerancePct percent:
//
//	bound = amount * (100 - pct) / 100
//
// Tolerances of 100% or more clamp the bound to zero.
func MinimumReceived(amount *big.Int, tolerancePct uint64) *big.Int {
	if tolerancePct >= 100 {
		return big.NewInt(0)
	}
	bound := new(big.Int).Mul(amount, big.NewInt(int64(100-tolerancePct)))
	return bound.Quo(bound, hundred)
}

// MaximumSpent adds a surcharge of tolerancePct percent:
//
//	bound = amount * (100 + pct) / 100
func MaximumSpent(amount *big.Int, tolerancePct uint64) *big.Int {
	bound := new(big.Int).Mul(amount, new(big.Int).SetUint64(100+tolerancePct))
	return bound.Quo(bound, hundred)
}

// ShareOf returns amount * percent / 100, truncated. Used for withdrawal
// percentages of an LP balance.
func ShareOf(amount *big.Int, percent uint64) *big.Int {
	share := new(big.Int).Mul(amount, new(big.Int).SetUint64(percent))
	return share.Quo(share, hundred)
}
