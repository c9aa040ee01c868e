package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/apm"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/connector"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/venue"
)

// RequestMeta carries the timing metadata every response includes.
type RequestMeta struct {
	Timestamp time.Time
	Latency   float64 // seconds
}

// QuoteParams is a wire-level quote request.
type QuoteParams struct {
	Network     string
	Connector   string
	BaseSymbol  string
	QuoteSymbol string
	Amount      string
	Side        string
	PoolID      string
	SlippagePct *uint64
}

// QuoteResult is a priced quote plus timing metadata.
type QuoteResult struct {
	Meta  RequestMeta
	Quote *domain.Quote
}

// TradeParams executes a swap, or cancels a pending one when Cancel is
// set together with TxHash.
type TradeParams struct {
	QuoteParams
	Address string
	Cancel  bool
	TxHash  string
}

// TradeResult is the trade outcome plus timing metadata.
type TradeResult struct {
	Meta    RequestMeta
	Receipt *domain.TradeReceipt
}

// AddLiquidityParams supplies both sides of a deposit.
type AddLiquidityParams struct {
	Network     string
	Connector   string
	PoolID      string
	TokenA      string
	TokenB      string
	AmountA     string
	AmountB     string
	Address     string
}

// RemoveLiquidityParams burns a percentage of the wallet's LP balance.
type RemoveLiquidityParams struct {
	Network         string
	Connector       string
	PoolID          string
	DecreasePercent uint64
	Address         string
}

// LiquidityResult is the liquidity outcome plus timing metadata.
type LiquidityResult struct {
	Meta    RequestMeta
	Receipt *domain.LiquidityReceipt
}

// PoolPriceParams requests a pool price series.
type PoolPriceParams struct {
	Network         string
	Connector       string
	PoolID          string
	PeriodSeconds   uint64
	IntervalSeconds uint64
}

// PoolPriceResult is the price series plus timing metadata.
type PoolPriceResult struct {
	Meta   RequestMeta
	Series *domain.PriceSeries
}

// EstimateGasParams requests the venue's network fee estimate.
type EstimateGasParams struct {
	Network   string
	Connector string
}

// EstimateGasResult is the fee estimate plus timing metadata.
type EstimateGasResult struct {
	Meta RequestMeta
	Fee  asset.Amount
}

// GatewayService is the venue-agnostic entry point for every operation.
// It normalizes requests against the chain's token catalog, resolves the
// venue by declared capability and delegates the economics to the venue.
type GatewayService struct {
	chains *ChainRegistry
	venues *venue.Catalog
	log    logger.LoggerInterface

	tracer     trace.Tracer
	opCounter  metric.Int64Counter
	opDuration metric.Float64Histogram
}

// NewGatewayService creates the service and its telemetry instruments.
func NewGatewayService(chains *ChainRegistry, venues *venue.Catalog, log logger.LoggerInterface) (*GatewayService, error) {
	meter := otel.GetMeterProvider().Meter("gateway")

	opCounter, err := meter.Int64Counter(
		"gateway_operations_total",
		metric.WithDescription("Total gateway operations by name and outcome"),
	)
	if err != nil {
		return nil, err
	}
	opDuration, err := meter.Float64Histogram(
		"gateway_operation_duration_seconds",
		metric.WithDescription("Gateway operation latency in seconds"),
	)
	if err != nil {
		return nil, err
	}

	return &GatewayService{
		chains:     chains,
		venues:     venues,
		log:        log,
		tracer:     apm.Tracer("gateway"),
		opCounter:  opCounter,
		opDuration: opDuration,
	}, nil
}

// Quote prices a swap without executing it.
func (s *GatewayService) Quote(ctx context.Context, p QuoteParams) (*QuoteResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "gateway.quote", p.Connector, p.Network)
	defer span.End()

	req, err := s.normalizeSwap(ctx, p)
	if err != nil {
		return nil, s.finish(ctx, span, "quote", p.Connector, start, err)
	}

	handle, err := s.venues.Resolve(ctx, p.Connector, p.Network, venue.CapQuote)
	if err != nil {
		return nil, s.finish(ctx, span, "quote", p.Connector, start, err)
	}
	quoter, err := as[Quoter](handle, "quote")
	if err != nil {
		return nil, s.finish(ctx, span, "quote", p.Connector, start, err)
	}

	q, err := quoter.GetSwapQuote(ctx, *req)
	if err != nil {
		return nil, s.finish(ctx, span, "quote", p.Connector, start, err)
	}

	s.finish(ctx, span, "quote", p.Connector, start, nil)
	return &QuoteResult{Meta: s.meta(start), Quote: q}, nil
}

// Trade executes a swap, or cancels a pending one.
func (s *GatewayService) Trade(ctx context.Context, p TradeParams) (*TradeResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "gateway.trade", p.Connector, p.Network)
	defer span.End()

	if p.Address == "" {
		err := apperror.New(apperror.CodeRequiredField, apperror.WithContext("address"))
		return nil, s.finish(ctx, span, "trade", p.Connector, start, err)
	}

	handle, err := s.venues.Resolve(ctx, p.Connector, p.Network, venue.CapTrade)
	if err != nil {
		return nil, s.finish(ctx, span, "trade", p.Connector, start, err)
	}
	trader, err := as[Trader](handle, "trade")
	if err != nil {
		return nil, s.finish(ctx, span, "trade", p.Connector, start, err)
	}

	var receipt *domain.TradeReceipt
	if p.Cancel {
		if p.TxHash == "" {
			err := apperror.New(apperror.CodeRequiredField, apperror.WithContext("txHash"))
			return nil, s.finish(ctx, span, "trade", p.Connector, start, err)
		}
		receipt, err = trader.CancelOrder(ctx, p.TxHash, p.Address)
	} else {
		var req *SwapQuoteRequest
		req, err = s.normalizeSwap(ctx, p.QuoteParams)
		if err == nil {
			receipt, err = trader.ExecuteSwap(ctx, *req, p.Address)
		}
	}
	if err != nil {
		return nil, s.finish(ctx, span, "trade", p.Connector, start, err)
	}

	s.log.Info(ctx, "trade submitted",
		"connector", p.Connector, "network", p.Network, "txHash", receipt.TxHash)
	s.finish(ctx, span, "trade", p.Connector, start, nil)
	return &TradeResult{Meta: s.meta(start), Receipt: receipt}, nil
}

// AddLiquidity deposits both assets into a pool, auto-correcting amounts
// that are out of the pool ratio.
func (s *GatewayService) AddLiquidity(ctx context.Context, p AddLiquidityParams) (*LiquidityResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "gateway.add_liquidity", p.Connector, p.Network)
	defer span.End()

	if p.Address == "" {
		err := apperror.New(apperror.CodeRequiredField, apperror.WithContext("address"))
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}

	cc, err := s.chain(ctx, p.Network)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}
	norm := NewNormalizer(cc.Tokens)

	assetA, err := norm.Asset(p.TokenA)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}
	assetB, err := norm.Asset(p.TokenB)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}
	amountA, err := norm.Amount(assetA, p.AmountA)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}
	amountB, err := norm.Amount(assetB, p.AmountB)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}

	handle, err := s.venues.Resolve(ctx, p.Connector, p.Network, venue.CapLiquidity)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}
	mgr, err := as[LiquidityManager](handle, "liquidity")
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}

	receipt, err := mgr.AddLiquidity(ctx, AddLiquidityRequest{
		PoolID:  p.PoolID,
		AmountA: amountA,
		AmountB: amountB,
	}, p.Address)
	if err != nil {
		return nil, s.finish(ctx, span, "add_liquidity", p.Connector, start, err)
	}

	s.finish(ctx, span, "add_liquidity", p.Connector, start, nil)
	return &LiquidityResult{Meta: s.meta(start), Receipt: receipt}, nil
}

// RemoveLiquidity burns DecreasePercent of the wallet's LP balance.
func (s *GatewayService) RemoveLiquidity(ctx context.Context, p RemoveLiquidityParams) (*LiquidityResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "gateway.remove_liquidity", p.Connector, p.Network)
	defer span.End()

	if p.Address == "" {
		err := apperror.New(apperror.CodeRequiredField, apperror.WithContext("address"))
		return nil, s.finish(ctx, span, "remove_liquidity", p.Connector, start, err)
	}
	if err := ValidatePercent(p.DecreasePercent); err != nil {
		return nil, s.finish(ctx, span, "remove_liquidity", p.Connector, start, err)
	}

	handle, err := s.venues.Resolve(ctx, p.Connector, p.Network, venue.CapLiquidity)
	if err != nil {
		return nil, s.finish(ctx, span, "remove_liquidity", p.Connector, start, err)
	}
	mgr, err := as[LiquidityManager](handle, "liquidity")
	if err != nil {
		return nil, s.finish(ctx, span, "remove_liquidity", p.Connector, start, err)
	}

	receipt, err := mgr.RemoveLiquidity(ctx, RemoveLiquidityRequest{
		PoolID:          p.PoolID,
		DecreasePercent: p.DecreasePercent,
	}, p.Address)
	if err != nil {
		return nil, s.finish(ctx, span, "remove_liquidity", p.Connector, start, err)
	}

	s.finish(ctx, span, "remove_liquidity", p.Connector, start, nil)
	return &LiquidityResult{Meta: s.meta(start), Receipt: receipt}, nil
}

// PoolPrice expands the current pool price over period/interval buckets.
func (s *GatewayService) PoolPrice(ctx context.Context, p PoolPriceParams) (*PoolPriceResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "gateway.pool_price", p.Connector, p.Network)
	defer span.End()

	if p.IntervalSeconds == 0 || p.PeriodSeconds == 0 {
		err := apperror.New(apperror.CodeValidationError,
			apperror.WithContext("period and interval must be positive"))
		return nil, s.finish(ctx, span, "pool_price", p.Connector, start, err)
	}

	handle, err := s.venues.Resolve(ctx, p.Connector, p.Network, venue.CapPoolPrice)
	if err != nil {
		return nil, s.finish(ctx, span, "pool_price", p.Connector, start, err)
	}
	pricer, err := as[PoolPricer](handle, "pool-price")
	if err != nil {
		return nil, s.finish(ctx, span, "pool_price", p.Connector, start, err)
	}

	series, err := pricer.PoolPrice(ctx, PoolPriceRequest{
		PoolID:          p.PoolID,
		PeriodSeconds:   p.PeriodSeconds,
		IntervalSeconds: p.IntervalSeconds,
	})
	if err != nil {
		return nil, s.finish(ctx, span, "pool_price", p.Connector, start, err)
	}

	s.finish(ctx, span, "pool_price", p.Connector, start, nil)
	return &PoolPriceResult{Meta: s.meta(start), Series: series}, nil
}

// EstimateGas returns the venue's flat network fee estimate.
func (s *GatewayService) EstimateGas(ctx context.Context, p EstimateGasParams) (*EstimateGasResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "gateway.estimate_gas", p.Connector, p.Network)
	defer span.End()

	handle, err := s.venues.Resolve(ctx, p.Connector, p.Network, venue.CapGasEstimate)
	if err != nil {
		return nil, s.finish(ctx, span, "estimate_gas", p.Connector, start, err)
	}
	estimator, err := as[GasEstimator](handle, "gas-estimate")
	if err != nil {
		return nil, s.finish(ctx, span, "estimate_gas", p.Connector, start, err)
	}

	fee, err := estimator.EstimateGas(ctx)
	if err != nil {
		return nil, s.finish(ctx, span, "estimate_gas", p.Connector, start, err)
	}

	s.finish(ctx, span, "estimate_gas", p.Connector, start, nil)
	return &EstimateGasResult{Meta: s.meta(start), Fee: fee}, nil
}

// normalizeSwap resolves symbols, amount and side against the network's
// token catalog.
func (s *GatewayService) normalizeSwap(ctx context.Context, p QuoteParams) (*SwapQuoteRequest, error) {
	cc, err := s.chain(ctx, p.Network)
	if err != nil {
		return nil, err
	}
	norm := NewNormalizer(cc.Tokens)

	base, err := norm.Asset(p.BaseSymbol)
	if err != nil {
		return nil, err
	}
	quote, err := norm.Asset(p.QuoteSymbol)
	if err != nil {
		return nil, err
	}
	side, err := norm.Side(p.Side)
	if err != nil {
		return nil, err
	}
	amount, err := norm.Amount(base, p.Amount)
	if err != nil {
		return nil, err
	}

	return &SwapQuoteRequest{
		PoolID:      p.PoolID,
		Base:        base,
		Quote:       quote,
		Amount:      amount,
		Side:        side,
		SlippagePct: p.SlippagePct,
	}, nil
}

func (s *GatewayService) chain(ctx context.Context, network string) (*ChainContext, error) {
	if network == "" {
		return nil, apperror.New(apperror.CodeRequiredField, apperror.WithContext("network"))
	}
	cc, err := s.chains.GetOrCreate(ctx, connector.Key{Chain: ChainName, Network: network})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.CodeChainInitFailed,
			fmt.Sprintf("network=%s", network))
	}
	return cc, nil
}

func (s *GatewayService) startSpan(ctx context.Context, name, conn, network string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("connector", conn),
			attribute.String("network", network),
		))
}

// finish records metrics and span status, and returns err unchanged.
func (s *GatewayService) finish(ctx context.Context, span trace.Span, op, conn string, start time.Time, err error) error {
	elapsed := time.Since(start)
	success := err == nil

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn(ctx, "operation failed",
			"operation", op, "connector", conn,
			"code", string(apperror.GetCode(err)), "error", err)
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("connector", conn),
		attribute.Bool("success", success),
	)
	s.opCounter.Add(ctx, 1, attrs)
	s.opDuration.Record(ctx, elapsed.Seconds(), attrs)
	return err
}

func (s *GatewayService) meta(start time.Time) RequestMeta {
	return RequestMeta{
		Timestamp: start,
		Latency:   time.Since(start).Seconds(),
	}
}

// as asserts a venue handle to the capability interface it declared.
func as[T any](h venue.Handle, capName string) (T, error) {
	typed, ok := h.(T)
	if !ok {
		var zero T
		return zero, apperror.New(apperror.CodeUnsupportedOperation,
			apperror.WithContext(fmt.Sprintf("connector=%s capability=%s not implemented", h.Name(), capName)))
	}
	return typed, nil
}
