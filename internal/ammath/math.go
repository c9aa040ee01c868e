// Package ammath implements constant-product AMM arithmetic on big.Int.
// All functions are pure and operate on raw smallest-unit integers; no
// binary floating point is used anywhere.
package ammath

import (
	"errors"
	"math/big"
)

// Common errors
var (
	ErrInsufficientLiquidity = errors.New("ammath: insufficient liquidity")
	ErrZeroWithdrawal        = errors.New("ammath: zero withdrawal amount")
	ErrNegativeInput         = errors.New("ammath: negative input")
	ErrInvalidFee            = errors.New("ammath: fee must satisfy 0 <= num < den")
)

// Fee is a trading fee expressed as the exact rational Num/Den
// (e.g. 3/1000 for 0.3%). The zero value is a zero fee with Den 0 and is
// not valid; use ZeroFee or NewFee.
type Fee struct {
	Num uint64
	Den uint64
}

// ZeroFee is a 0% trading fee.
var ZeroFee = Fee{Num: 0, Den: 1}

// NewFee creates a Fee, validating 0 <= num < den.
func NewFee(num, den uint64) (Fee, error) {
	if den == 0 || num >= den {
		return Fee{}, ErrInvalidFee
	}
	return Fee{Num: num, Den: den}, nil
}

func (f Fee) valid() bool {
	return f.Den != 0 && f.Num < f.Den
}

// retained returns (Den-Num, Den) as big.Ints: the fraction of the input
// kept after the trading fee.
func (f Fee) retained() (*big.Int, *big.Int) {
	den := new(big.Int).SetUint64(f.Den)
	keep := new(big.Int).SetUint64(f.Den - f.Num)
	return keep, den
}

// SwapExactIn computes the output amount for a fixed input:
//
//	out = reserveOut * in*(den-num) / (reserveIn*den + in*(den-num))
//
// The fee is applied inside the formula, before the output is computed.
// Division truncates toward zero. Fails with ErrInsufficientLiquidity when
// the effective input pool is empty or the result is not positive.
func SwapExactIn(amountIn, reserveIn, reserveOut *big.Int, fee Fee) (*big.Int, error) {
	if err := checkNonNegative(amountIn, reserveIn, reserveOut); err != nil {
		return nil, err
	}
	if !fee.valid() {
		return nil, ErrInvalidFee
	}
	if amountIn.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	keep, den := fee.retained()

	// inNet = in * (den - num), scaled by den on the reserve side
	inNet := new(big.Int).Mul(amountIn, keep)
	denom := new(big.Int).Mul(reserveIn, den)
	denom.Add(denom, inNet)
	if denom.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	out := new(big.Int).Mul(reserveOut, inNet)
	out.Quo(out, denom)
	if out.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	return out, nil
}

// SwapExactOut computes the input amount required for a fixed output:
//
//	in = ceil(reserveIn * out * den / ((reserveOut - out) * (den-num)))
//
// Rounding is up so the computed input always buys at least the requested
// output. Fails with ErrInsufficientLiquidity when out >= reserveOut or
// the input reserve is empty.
func SwapExactOut(amountOut, reserveIn, reserveOut *big.Int, fee Fee) (*big.Int, error) {
	if err := checkNonNegative(amountOut, reserveIn, reserveOut); err != nil {
		return nil, err
	}
	if !fee.valid() {
		return nil, ErrInvalidFee
	}
	if amountOut.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if reserveIn.Sign() == 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	keep, den := fee.retained()

	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, den)

	denom := new(big.Int).Sub(reserveOut, amountOut)
	denom.Mul(denom, keep)
	if denom.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	in, rem := new(big.Int).QuoRem(num, denom, new(big.Int))
	if rem.Sign() != 0 {
		in.Add(in, big.NewInt(1))
	}
	return in, nil
}

// DepositResult holds the liquidity-preserving amounts for a deposit.
type DepositResult struct {
	NecessaryA *big.Int // amount of asset A actually required
	NecessaryB *big.Int // amount of asset B actually required
	LPMinted   *big.Int // LP tokens minted for the corrected pair
}

// Deposit computes a proportional deposit. Supplied amounts that are not in
// the pool's current ratio are auto-corrected: the limiting side is kept
// verbatim and the paired amount is recomputed to preserve the ratio. The
// LP tokens minted are min(amountA*L/reserveA, amountB*L/reserveB).
func Deposit(amountA, amountB, reserveA, reserveB, totalLiquidity *big.Int) (*DepositResult, error) {
	if err := checkNonNegative(amountA, amountB, reserveA, reserveB, totalLiquidity); err != nil {
		return nil, err
	}
	if reserveA.Sign() == 0 || reserveB.Sign() == 0 || totalLiquidity.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	lpA := new(big.Int).Mul(amountA, totalLiquidity)
	lpA.Quo(lpA, reserveA)
	lpB := new(big.Int).Mul(amountB, totalLiquidity)
	lpB.Quo(lpB, reserveB)

	res := &DepositResult{}
	if lpA.Cmp(lpB) <= 0 {
		// A limits: keep A, recompute B
		res.LPMinted = lpA
		res.NecessaryA = new(big.Int).Set(amountA)
		res.NecessaryB = new(big.Int).Mul(amountA, reserveB)
		res.NecessaryB.Quo(res.NecessaryB, reserveA)
	} else {
		// B limits: keep B, recompute A
		res.LPMinted = lpB
		res.NecessaryB = new(big.Int).Set(amountB)
		res.NecessaryA = new(big.Int).Mul(amountB, reserveA)
		res.NecessaryA.Quo(res.NecessaryA, reserveB)
	}

	if res.LPMinted.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}
	return res, nil
}

// Withdraw computes the proportional share of both reserves for burning
// lpAmount LP tokens:
//
//	amountX = reserveX * lpAmount / totalLiquidity
//
// Fails with ErrZeroWithdrawal when lpAmount is zero.
func Withdraw(lpAmount, reserveA, reserveB, totalLiquidity *big.Int) (amountA, amountB *big.Int, err error) {
	if err := checkNonNegative(lpAmount, reserveA, reserveB, totalLiquidity); err != nil {
		return nil, nil, err
	}
	if lpAmount.Sign() == 0 {
		return nil, nil, ErrZeroWithdrawal
	}
	if totalLiquidity.Sign() == 0 {
		return nil, nil, ErrInsufficientLiquidity
	}

	amountA = new(big.Int).Mul(reserveA, lpAmount)
	amountA.Quo(amountA, totalLiquidity)
	amountB = new(big.Int).Mul(reserveB, lpAmount)
	amountB.Quo(amountB, totalLiquidity)
	return amountA, amountB, nil
}

func checkNonNegative(values ...*big.Int) error {
	for _, v := range values {
		if v == nil || v.Sign() < 0 {
			return ErrNegativeInput
		}
	}
	return nil
}
