package app

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/connector"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/venue"
)

type stubPools struct{}

func (stubPools) PoolByID(ctx context.Context, poolID string) (*domain.PoolState, error) {
	return nil, apperror.New(apperror.CodePoolNotFound)
}

func (stubPools) LPBalance(ctx context.Context, address string, lpAsset asset.AssetID) (*big.Int, error) {
	return big.NewInt(0), nil
}

// fakeVenue records the normalized requests the service hands down.
type fakeVenue struct {
	name string

	quoteReq  *SwapQuoteRequest
	swapReq   *SwapQuoteRequest
	cancelled string
	removeReq *RemoveLiquidityRequest
	addReq    *AddLiquidityRequest
	priceReq  *PoolPriceRequest
}

func (f *fakeVenue) Name() string                   { return f.name }
func (f *fakeVenue) Capabilities() venue.Capability { return venue.CapSpotFull }

func (f *fakeVenue) GetSwapQuote(ctx context.Context, req SwapQuoteRequest) (*domain.Quote, error) {
	f.quoteReq = &req
	return &domain.Quote{PoolID: req.PoolID, Side: req.Side, Base: req.Base, Quote: req.Quote}, nil
}

func (f *fakeVenue) ExecuteSwap(ctx context.Context, req SwapQuoteRequest, address string) (*domain.TradeReceipt, error) {
	f.swapReq = &req
	return &domain.TradeReceipt{TxHash: "txswap"}, nil
}

func (f *fakeVenue) CancelOrder(ctx context.Context, txHash, address string) (*domain.TradeReceipt, error) {
	f.cancelled = txHash
	return &domain.TradeReceipt{TxHash: "txcancel"}, nil
}

func (f *fakeVenue) AddLiquidity(ctx context.Context, req AddLiquidityRequest, address string) (*domain.LiquidityReceipt, error) {
	f.addReq = &req
	return &domain.LiquidityReceipt{TxHash: "txadd"}, nil
}

func (f *fakeVenue) RemoveLiquidity(ctx context.Context, req RemoveLiquidityRequest, address string) (*domain.LiquidityReceipt, error) {
	f.removeReq = &req
	return &domain.LiquidityReceipt{TxHash: "txremove"}, nil
}

func (f *fakeVenue) PoolPrice(ctx context.Context, req PoolPriceRequest) (*domain.PriceSeries, error) {
	f.priceReq = &req
	return &domain.PriceSeries{PoolID: req.PoolID}, nil
}

func (f *fakeVenue) EstimateGas(ctx context.Context) (asset.Amount, error) {
	return asset.NewAmountFromUint64(asset.ADA, 2_000_000), nil
}

// quoteOnlyVenue declares the full spot set but only implements Quoter,
// exercising the interface assertion behind the capability check.
type quoteOnlyVenue struct{}

func (quoteOnlyVenue) Name() string                   { return "quoteonly" }
func (quoteOnlyVenue) Capabilities() venue.Capability { return venue.CapSpotFull }
func (quoteOnlyVenue) GetSwapQuote(ctx context.Context, req SwapQuoteRequest) (*domain.Quote, error) {
	return &domain.Quote{}, nil
}

func newTestService(t *testing.T) (*GatewayService, *fakeVenue) {
	t.Helper()

	chains := NewChainRegistry(func(ctx context.Context, key connector.Key) (*ChainContext, error) {
		return NewChainContext(key.Network, asset.DefaultCatalog(asset.NetworkMainnet), stubPools{}, nil), nil
	})

	fake := &fakeVenue{name: "fakedex"}
	venues := venue.NewCatalog()
	if err := venues.Register(fake.name, venue.CapSpotFull, func(ctx context.Context, network string) (venue.Handle, error) {
		return fake, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := venues.Register("quoteonly", venue.CapSpotFull, func(ctx context.Context, network string) (venue.Handle, error) {
		return quoteOnlyVenue{}, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	log := logger.New(io.Discard, logger.LevelError, "test")
	svc, err := NewGatewayService(chains, venues, log)
	if err != nil {
		t.Fatalf("NewGatewayService: %v", err)
	}
	return svc, fake
}

func quoteParams() QuoteParams {
	return QuoteParams{
		Network:     asset.NetworkMainnet,
		Connector:   "fakedex",
		BaseSymbol:  "ADA",
		QuoteSymbol: "MIN",
		Amount:      "1.5",
		Side:        "SELL",
	}
}

func TestQuoteNormalizesRequest(t *testing.T) {
	svc, fake := newTestService(t)

	res, err := svc.Quote(context.Background(), quoteParams())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.Quote == nil {
		t.Fatal("Quote returned nil quote")
	}
	if res.Meta.Timestamp.IsZero() {
		t.Error("meta timestamp not set")
	}

	req := fake.quoteReq
	if req == nil {
		t.Fatal("venue never received the request")
	}
	if got := req.Amount.Raw().Int64(); got != 1_500_000 {
		t.Errorf("amount raw = %d, want 1500000 (1.5 ADA)", got)
	}
	if !req.Base.Equals(asset.ADA) || !req.Quote.Equals(asset.MIN) {
		t.Errorf("assets = %s/%s, want ADA/MIN", req.Base, req.Quote)
	}
	if req.Side != domain.SideSell {
		t.Errorf("side = %s, want SELL", req.Side)
	}
}

func TestQuoteErrors(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*QuoteParams)
		code   apperror.Code
	}{
		{"unknown_connector", func(p *QuoteParams) { p.Connector = "nosuchdex" }, apperror.CodeUnknownConnector},
		{"unknown_token", func(p *QuoteParams) { p.QuoteSymbol = "DOGE" }, apperror.CodeTokenNotSupported},
		{"missing_network", func(p *QuoteParams) { p.Network = "" }, apperror.CodeRequiredField},
		{"invalid_side", func(p *QuoteParams) { p.Side = "HOLD" }, apperror.CodeValidationError},
		{"zero_amount", func(p *QuoteParams) { p.Amount = "0" }, apperror.CodeInvalidAmount},
		{"excess_precision", func(p *QuoteParams) { p.Amount = "1.1234567" }, apperror.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := quoteParams()
			tt.mutate(&p)
			_, err := svc.Quote(context.Background(), p)
			if got := apperror.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestTradeRequiresAddress(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Trade(context.Background(), TradeParams{QuoteParams: quoteParams()})
	if got := apperror.GetCode(err); got != apperror.CodeRequiredField {
		t.Errorf("code = %s, want %s", got, apperror.CodeRequiredField)
	}
}

func TestTradeExecutesSwap(t *testing.T) {
	svc, fake := newTestService(t)

	res, err := svc.Trade(context.Background(), TradeParams{
		QuoteParams: quoteParams(),
		Address:     "addr1test",
	})
	if err != nil {
		t.Fatalf("Trade: %v", err)
	}
	if res.Receipt.TxHash != "txswap" {
		t.Errorf("TxHash = %s, want txswap", res.Receipt.TxHash)
	}
	if fake.swapReq == nil {
		t.Fatal("venue never received the swap")
	}
}

func TestTradeCancel(t *testing.T) {
	svc, fake := newTestService(t)

	t.Run("requires_tx_hash", func(t *testing.T) {
		_, err := svc.Trade(context.Background(), TradeParams{
			QuoteParams: quoteParams(),
			Address:     "addr1test",
			Cancel:      true,
		})
		if got := apperror.GetCode(err); got != apperror.CodeRequiredField {
			t.Errorf("code = %s, want %s", got, apperror.CodeRequiredField)
		}
	})

	t.Run("routes_cancellation", func(t *testing.T) {
		res, err := svc.Trade(context.Background(), TradeParams{
			QuoteParams: QuoteParams{Network: asset.NetworkMainnet, Connector: "fakedex"},
			Address:     "addr1test",
			Cancel:      true,
			TxHash:      "txpending",
		})
		if err != nil {
			t.Fatalf("Trade: %v", err)
		}
		if res.Receipt.TxHash != "txcancel" {
			t.Errorf("TxHash = %s, want txcancel", res.Receipt.TxHash)
		}
		if fake.cancelled != "txpending" {
			t.Errorf("cancelled = %s, want txpending", fake.cancelled)
		}
	})
}

func TestAddLiquidityNormalizesAmounts(t *testing.T) {
	svc, fake := newTestService(t)

	_, err := svc.AddLiquidity(context.Background(), AddLiquidityParams{
		Network:   asset.NetworkMainnet,
		Connector: "fakedex",
		TokenA:    "ADA",
		TokenB:    "MIN",
		AmountA:   "2",
		AmountB:   "4",
		Address:   "addr1test",
	})
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	req := fake.addReq
	if req == nil {
		t.Fatal("venue never received the deposit")
	}
	if got := req.AmountA.Raw().Int64(); got != 2_000_000 {
		t.Errorf("AmountA raw = %d, want 2000000", got)
	}
	if got := req.AmountB.Raw().Int64(); got != 4_000_000 {
		t.Errorf("AmountB raw = %d, want 4000000", got)
	}
}

func TestRemoveLiquidityValidatesPercent(t *testing.T) {
	svc, _ := newTestService(t)

	for _, pct := range []uint64{0, 101} {
		_, err := svc.RemoveLiquidity(context.Background(), RemoveLiquidityParams{
			Network:         asset.NetworkMainnet,
			Connector:       "fakedex",
			DecreasePercent: pct,
			Address:         "addr1test",
		})
		if got := apperror.GetCode(err); got != apperror.CodeValidationError {
			t.Errorf("percent=%d: code = %s, want %s", pct, got, apperror.CodeValidationError)
		}
	}
}

func TestRemoveLiquidityDelegates(t *testing.T) {
	svc, fake := newTestService(t)

	_, err := svc.RemoveLiquidity(context.Background(), RemoveLiquidityParams{
		Network:         asset.NetworkMainnet,
		Connector:       "fakedex",
		DecreasePercent: 100,
		Address:         "addr1test",
	})
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if fake.removeReq == nil || fake.removeReq.DecreasePercent != 100 {
		t.Errorf("removeReq = %+v, want DecreasePercent 100", fake.removeReq)
	}
}

func TestPoolPriceValidatesWindow(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PoolPrice(context.Background(), PoolPriceParams{
		Network:       asset.NetworkMainnet,
		Connector:     "fakedex",
		PeriodSeconds: 3600,
	})
	if got := apperror.GetCode(err); got != apperror.CodeValidationError {
		t.Errorf("code = %s, want %s", got, apperror.CodeValidationError)
	}
}

func TestEstimateGas(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.EstimateGas(context.Background(), EstimateGasParams{
		Network:   asset.NetworkMainnet,
		Connector: "fakedex",
	})
	if err != nil {
		t.Fatalf("EstimateGas: %v", err)
	}
	if got := res.Fee.Raw().Int64(); got != 2_000_000 {
		t.Errorf("fee = %d, want 2000000", got)
	}
}

func TestCapabilityAssertion(t *testing.T) {
	svc, _ := newTestService(t)

	// quoteonly declares the trade capability but does not implement it.
	_, err := svc.Trade(context.Background(), TradeParams{
		QuoteParams: QuoteParams{Network: asset.NetworkMainnet, Connector: "quoteonly"},
		Address:     "addr1test",
		Cancel:      true,
		TxHash:      "txpending",
	})
	if got := apperror.GetCode(err); got != apperror.CodeUnsupportedOperation {
		t.Errorf("code = %s, want %s", got, apperror.CodeUnsupportedOperation)
	}
}
