// Package ammvenue implements the spot capability set for constant-product
// AMM venues. Concrete venues wrap Core with their own fee policy and
// configuration.
package ammvenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cardex/gateway/business/gateway/app"
	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/ammath"
	"github.com/cardex/gateway/internal/apm"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/venue"
)

// QuoteAdjuster lets a venue apply its fixed protocol fees to a quote
// after the AMM math has run.
type QuoteAdjuster func(q *domain.Quote)

// Config holds the per-network venue settings.
type Config struct {
	Name          string
	Network       string
	DefaultPoolID string
	SlippagePct   uint64
	// NetworkFee is the flat fee estimate for a venue transaction,
	// denominated in the chain's native currency.
	NetworkFee asset.Amount
}

// Deps are the collaborators a venue core needs.
type Deps struct {
	Pools     app.PoolStateProvider
	Assembler app.TxAssembler
	Log       logger.LoggerInterface
}

// Core implements the full spot capability set against one network.
type Core struct {
	cfg      Config
	pools    app.PoolStateProvider
	asm      app.TxAssembler
	log      logger.LoggerInterface
	tracer   trace.Tracer
	adjuster QuoteAdjuster
}

// Interface checks: Core carries every spot capability.
var (
	_ venue.Handle         = (*Core)(nil)
	_ app.Quoter           = (*Core)(nil)
	_ app.Trader           = (*Core)(nil)
	_ app.LiquidityManager = (*Core)(nil)
	_ app.PoolPricer       = (*Core)(nil)
	_ app.GasEstimator     = (*Core)(nil)
)

// NewCore creates a venue core. adjuster may be nil.
func NewCore(cfg Config, deps Deps, adjuster QuoteAdjuster) *Core {
	return &Core{
		cfg:      cfg,
		pools:    deps.Pools,
		asm:      deps.Assembler,
		log:      deps.Log,
		tracer:   apm.Tracer("venue." + cfg.Name),
		adjuster: adjuster,
	}
}

// Name returns the venue's connector name.
func (c *Core) Name() string { return c.cfg.Name }

// Capabilities returns the full spot set.
func (c *Core) Capabilities() venue.Capability { return venue.CapSpotFull }

// poolID resolves the effective pool: explicit request id, else the
// venue's configured default.
func (c *Core) poolID(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if c.cfg.DefaultPoolID != "" {
		return c.cfg.DefaultPoolID, nil
	}
	return "", apperror.New(apperror.CodeRequiredField,
		apperror.WithContext(fmt.Sprintf("poolId (no default configured for %s on %s)",
			c.cfg.Name, c.cfg.Network)))
}

func (c *Core) slippage(override *uint64) uint64 {
	if override != nil {
		return *override
	}
	return c.cfg.SlippagePct
}

// GetSwapQuote prices a swap against a single pool snapshot. The fee is
// applied inside the AMM formula; the slippage bound is derived from the
// same snapshot afterwards.
func (c *Core) GetSwapQuote(ctx context.Context, req app.SwapQuoteRequest) (*domain.Quote, error) {
	ctx, span := c.tracer.Start(ctx, "venue.quote")
	defer span.End()

	id, err := c.poolID(req.PoolID)
	if err != nil {
		return nil, err
	}
	pool, err := c.pools.PoolByID(ctx, id)
	if err != nil {
		return nil, err
	}

	or, err := pool.Orient(req.Base, req.Quote)
	if err != nil {
		return nil, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("pool %s does not hold %s/%s",
				id, req.Base.Symbol(), req.Quote.Symbol())),
			apperror.WithCause(err))
	}

	pct := c.slippage(req.SlippagePct)
	q := &domain.Quote{
		PoolID:      id,
		Side:        req.Side,
		Base:        req.Base,
		Quote:       req.Quote,
		SlippagePct: pct,
		Fee:         pool.Fee,
		GasEstimate: c.cfg.NetworkFee,
	}

	switch req.Side {
	case domain.SideSell:
		out, err := ammath.SwapExactIn(req.Amount.Raw(), or.ReserveBase, or.ReserveQuote, pool.Fee)
		if err != nil {
			return nil, mapMathError(err)
		}
		q.ExpectedIn = req.Amount
		q.ExpectedOut = asset.NewAmount(req.Quote, out)
		q.Limit = asset.NewAmount(req.Quote, ammath.MinimumReceived(out, pct))

	case domain.SideBuy:
		in, err := ammath.SwapExactOut(req.Amount.Raw(), or.ReserveQuote, or.ReserveBase, pool.Fee)
		if err != nil {
			return nil, mapMathError(err)
		}
		q.ExpectedIn = asset.NewAmount(req.Quote, in)
		q.ExpectedOut = req.Amount
		q.Limit = asset.NewAmount(req.Quote, ammath.MaximumSpent(in, pct))

	default:
		return nil, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("side=%s", req.Side)))
	}

	if c.adjuster != nil {
		c.adjuster(q)
	}
	return q, nil
}

// ExecuteSwap quotes and submits a swap in one step, against one pool
// snapshot.
func (c *Core) ExecuteSwap(ctx context.Context, req app.SwapQuoteRequest, address string) (*domain.TradeReceipt, error) {
	ctx, span := c.tracer.Start(ctx, "venue.swap")
	defer span.End()

	q, err := c.GetSwapQuote(ctx, req)
	if err != nil {
		return nil, err
	}

	hash, err := c.asm.SubmitSwap(ctx, &domain.SwapPlan{
		PoolID: q.PoolID,
		Side:   q.Side,
		In:     q.ExpectedIn,
		Out:    q.ExpectedOut,
		Limit:  q.Limit,
	}, address)
	if err != nil {
		return nil, err
	}

	c.log.Info(ctx, "swap submitted", "venue", c.cfg.Name, "pool", q.PoolID, "txHash", hash)
	return &domain.TradeReceipt{TxHash: hash, Quote: q}, nil
}

// CancelOrder routes a cancellation for a pending order transaction.
func (c *Core) CancelOrder(ctx context.Context, txHash, address string) (*domain.TradeReceipt, error) {
	ctx, span := c.tracer.Start(ctx, "venue.cancel")
	defer span.End()

	hash, err := c.asm.CancelOrder(ctx, txHash, address)
	if err != nil {
		return nil, err
	}
	return &domain.TradeReceipt{TxHash: hash}, nil
}

// AddLiquidity deposits both assets, auto-correcting out-of-ratio
// amounts down to the liquidity-preserving pair.
func (c *Core) AddLiquidity(ctx context.Context, req app.AddLiquidityRequest, address string) (*domain.LiquidityReceipt, error) {
	ctx, span := c.tracer.Start(ctx, "venue.add_liquidity")
	defer span.End()

	id, err := c.poolID(req.PoolID)
	if err != nil {
		return nil, err
	}
	pool, err := c.pools.PoolByID(ctx, id)
	if err != nil {
		return nil, err
	}

	amountA, amountB, err := orientDeposit(pool, req.AmountA, req.AmountB)
	if err != nil {
		return nil, err
	}

	dep, err := ammath.Deposit(amountA.Raw(), amountB.Raw(), pool.ReserveA, pool.ReserveB, pool.TotalLP)
	if err != nil {
		return nil, mapMathError(err)
	}

	plan := &domain.LiquidityPlan{
		PoolID:    id,
		AmountA:   asset.NewAmount(pool.AssetA, dep.NecessaryA),
		AmountB:   asset.NewAmount(pool.AssetB, dep.NecessaryB),
		LP:        dep.LPMinted,
		LPAssetID: pool.LPAssetID,
	}
	hash, err := c.asm.SubmitDeposit(ctx, plan, address)
	if err != nil {
		return nil, err
	}

	c.log.Info(ctx, "deposit submitted", "venue", c.cfg.Name, "pool", id, "txHash", hash)
	return &domain.LiquidityReceipt{TxHash: hash, Plan: plan}, nil
}

// RemoveLiquidity burns a percentage of the wallet's LP balance.
func (c *Core) RemoveLiquidity(ctx context.Context, req app.RemoveLiquidityRequest, address string) (*domain.LiquidityReceipt, error) {
	ctx, span := c.tracer.Start(ctx, "venue.remove_liquidity")
	defer span.End()

	id, err := c.poolID(req.PoolID)
	if err != nil {
		return nil, err
	}
	pool, err := c.pools.PoolByID(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, err := c.pools.LPBalance(ctx, address, pool.LPAssetID)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, apperror.New(apperror.CodeInsufficientPosition,
			apperror.WithContext(fmt.Sprintf("pool=%s address holds no LP tokens", id)))
	}

	lp := ammath.ShareOf(balance, req.DecreasePercent)
	if lp.Sign() == 0 {
		return nil, apperror.New(apperror.CodeZeroWithdrawal,
			apperror.WithContext(fmt.Sprintf("pool=%s %d%% of balance %s rounds to zero",
				id, req.DecreasePercent, balance)))
	}

	amountA, amountB, err := ammath.Withdraw(lp, pool.ReserveA, pool.ReserveB, pool.TotalLP)
	if err != nil {
		return nil, mapMathError(err)
	}

	plan := &domain.LiquidityPlan{
		PoolID:    id,
		AmountA:   asset.NewAmount(pool.AssetA, amountA),
		AmountB:   asset.NewAmount(pool.AssetB, amountB),
		LP:        lp,
		LPAssetID: pool.LPAssetID,
	}
	hash, err := c.asm.SubmitWithdraw(ctx, plan, address)
	if err != nil {
		return nil, err
	}

	c.log.Info(ctx, "withdrawal submitted", "venue", c.cfg.Name, "pool", id, "txHash", hash)
	return &domain.LiquidityReceipt{TxHash: hash, Plan: plan}, nil
}

// PoolPrice expands the pool's current A/B price over period buckets.
// Bucket timestamps step backwards from now; each bucket carries the
// price from the same snapshot.
func (c *Core) PoolPrice(ctx context.Context, req app.PoolPriceRequest) (*domain.PriceSeries, error) {
	ctx, span := c.tracer.Start(ctx, "venue.pool_price")
	defer span.End()

	id, err := c.poolID(req.PoolID)
	if err != nil {
		return nil, err
	}
	pool, err := c.pools.PoolByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reserveA := asset.NewAmount(pool.AssetA, pool.ReserveA)
	reserveB := asset.NewAmount(pool.AssetB, pool.ReserveB)
	if reserveA.IsZero() {
		return nil, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(fmt.Sprintf("pool=%s empty reserve", id)))
	}
	price := reserveB.ToDecimal().DivRound(reserveA.ToDecimal(), 10)

	interval := time.Duration(req.IntervalSeconds) * time.Second
	buckets := int(req.PeriodSeconds / req.IntervalSeconds)
	if buckets < 1 {
		buckets = 1
	}

	now := time.Now().UTC()
	points := make([]domain.PricePoint, buckets)
	for i := 0; i < buckets; i++ {
		points[i] = domain.PricePoint{
			Timestamp: now.Add(-time.Duration(buckets-1-i) * interval),
			Price:     price,
		}
	}

	return &domain.PriceSeries{
		PoolID:   id,
		Base:     pool.AssetA,
		Quote:    pool.AssetB,
		Interval: interval,
		Points:   points,
	}, nil
}

// EstimateGas returns the venue's flat network fee estimate.
func (c *Core) EstimateGas(ctx context.Context) (asset.Amount, error) {
	return c.cfg.NetworkFee, nil
}

// orientDeposit maps user-supplied amounts onto the pool's A/B order.
func orientDeposit(pool *domain.PoolState, a, b asset.Amount) (asset.Amount, asset.Amount, error) {
	switch {
	case a.Asset().Equals(pool.AssetA) && b.Asset().Equals(pool.AssetB):
		return a, b, nil
	case a.Asset().Equals(pool.AssetB) && b.Asset().Equals(pool.AssetA):
		return b, a, nil
	default:
		return asset.Amount{}, asset.Amount{}, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("pool %s does not hold %s/%s",
				pool.ID, a.Asset().Symbol(), b.Asset().Symbol())))
	}
}

// mapMathError converts ammath failures to the public error taxonomy.
func mapMathError(err error) error {
	switch {
	case errors.Is(err, ammath.ErrInsufficientLiquidity):
		return apperror.New(apperror.CodeInsufficientLiquidity, apperror.WithCause(err))
	case errors.Is(err, ammath.ErrZeroWithdrawal):
		return apperror.New(apperror.CodeZeroWithdrawal, apperror.WithCause(err))
	case errors.Is(err, ammath.ErrNegativeInput), errors.Is(err, ammath.ErrInvalidFee):
		return apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	default:
		return apperror.Wrap(err, apperror.CodeInternalError, "amm math")
	}
}
