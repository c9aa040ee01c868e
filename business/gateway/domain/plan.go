package domain

import (
	"math/big"

	"github.com/cardex/gateway/internal/asset"
)

// SwapPlan is everything an assembler needs to build a swap transaction.
type SwapPlan struct {
	PoolID string
	Side   Side
	In     asset.Amount
	Out    asset.Amount
	Limit  asset.Amount
}

// LiquidityPlan is everything an assembler needs to build a deposit or
// withdrawal transaction. LP is in raw LP token units.
type LiquidityPlan struct {
	PoolID    string
	AmountA   asset.Amount
	AmountB   asset.Amount
	LP        *big.Int
	LPAssetID asset.AssetID
}

// TradeReceipt is the outcome of a submitted (or cancelled) trade.
type TradeReceipt struct {
	TxHash string
	Quote  *Quote
}

// LiquidityReceipt is the outcome of a submitted liquidity operation.
type LiquidityReceipt struct {
	TxHash string
	Plan   *LiquidityPlan
}
