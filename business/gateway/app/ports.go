// Package app contains application services and port definitions for the gateway context.
package app

import (
	"context"
	"crypto/ed25519"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/asset"
)

// SwapQuoteRequest is a fully normalized quote request: assets resolved,
// amounts in raw smallest units.
type SwapQuoteRequest struct {
	// PoolID selects the pool; empty means the venue's configured
	// default for the pair.
	PoolID string
	Base   *asset.Asset
	Quote  *asset.Asset
	// Amount is denominated in the base asset: exact input for SELL,
	// exact output for BUY.
	Amount asset.Amount
	Side   domain.Side
	// SlippagePct overrides the venue's configured tolerance when set.
	SlippagePct *uint64
}

// AddLiquidityRequest supplies both sides of a deposit. Amounts out of
// the pool ratio are auto-corrected down by the venue.
type AddLiquidityRequest struct {
	PoolID  string
	AmountA asset.Amount
	AmountB asset.Amount
}

// RemoveLiquidityRequest burns a percentage of the wallet's LP balance.
type RemoveLiquidityRequest struct {
	PoolID          string
	DecreasePercent uint64
}

// PoolPriceRequest expands the current pool price over period buckets.
type PoolPriceRequest struct {
	PoolID          string
	PeriodSeconds   uint64
	IntervalSeconds uint64
}

// Spot venue capability interfaces. A venue declares the matching
// capability bits for exactly the interfaces it implements.

// Quoter prices swaps against a pool snapshot.
type Quoter interface {
	GetSwapQuote(ctx context.Context, req SwapQuoteRequest) (*domain.Quote, error)
}

// Trader executes and cancels swaps.
type Trader interface {
	ExecuteSwap(ctx context.Context, req SwapQuoteRequest, address string) (*domain.TradeReceipt, error)
	CancelOrder(ctx context.Context, txHash, address string) (*domain.TradeReceipt, error)
}

// LiquidityManager manages pool positions.
type LiquidityManager interface {
	AddLiquidity(ctx context.Context, req AddLiquidityRequest, address string) (*domain.LiquidityReceipt, error)
	RemoveLiquidity(ctx context.Context, req RemoveLiquidityRequest, address string) (*domain.LiquidityReceipt, error)
}

// PoolPricer serves pool price series.
type PoolPricer interface {
	PoolPrice(ctx context.Context, req PoolPriceRequest) (*domain.PriceSeries, error)
}

// GasEstimator estimates the network fee for a venue transaction.
type GasEstimator interface {
	EstimateGas(ctx context.Context) (asset.Amount, error)
}

// Perpetuals capability interfaces. Disjoint from the spot set; no spot
// venue declares these.

// PerpPosition is an open perpetuals position.
type PerpPosition struct {
	Pair  string
	Side  domain.Side
	Size  decimal.Decimal
	Entry decimal.Decimal
}

// MarketPricer serves perp market mid prices.
type MarketPricer interface {
	MarketPrice(ctx context.Context, pair string) (decimal.Decimal, error)
}

// TakerOrderWriter places immediate-or-cancel taker orders.
type TakerOrderWriter interface {
	PlaceTakerOrder(ctx context.Context, pair string, side domain.Side, size decimal.Decimal, address string) (string, error)
}

// PositionReader reads open positions.
type PositionReader interface {
	Position(ctx context.Context, pair, address string) (*PerpPosition, error)
}

// PairLister lists tradable perp pairs.
type PairLister interface {
	Pairs(ctx context.Context) ([]string, error)
}

// Infrastructure ports.

// PoolStateProvider reads pool snapshots and LP balances from the chain
// data provider.
type PoolStateProvider interface {
	PoolByID(ctx context.Context, poolID string) (*domain.PoolState, error)
	LPBalance(ctx context.Context, address string, lpAsset asset.AssetID) (*big.Int, error)
}

// TxAssembler builds, signs and submits venue transactions.
type TxAssembler interface {
	SubmitSwap(ctx context.Context, plan *domain.SwapPlan, address string) (string, error)
	SubmitDeposit(ctx context.Context, plan *domain.LiquidityPlan, address string) (string, error)
	SubmitWithdraw(ctx context.Context, plan *domain.LiquidityPlan, address string) (string, error)
	CancelOrder(ctx context.Context, txHash, address string) (string, error)
}

// WalletStore resolves addresses to signing keys.
type WalletStore interface {
	SigningKey(ctx context.Context, address string) (ed25519.PrivateKey, error)
	Addresses() ([]string, error)
}
