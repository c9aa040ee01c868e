package ammvenue

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/cardex/gateway/business/gateway/app"
	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/ammath"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/logger"
)

const testPoolID = "pool1adamin"

type fakePools struct {
	pool     *domain.PoolState
	balances map[string]*big.Int
}

func (f *fakePools) PoolByID(ctx context.Context, poolID string) (*domain.PoolState, error) {
	if f.pool == nil || poolID != f.pool.ID {
		return nil, apperror.New(apperror.CodePoolNotFound)
	}
	return f.pool, nil
}

func (f *fakePools) LPBalance(ctx context.Context, address string, lpAsset asset.AssetID) (*big.Int, error) {
	if b, ok := f.balances[address]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

type fakeAssembler struct {
	swaps     []*domain.SwapPlan
	deposits  []*domain.LiquidityPlan
	withdraws []*domain.LiquidityPlan
	cancels   []string
}

func (f *fakeAssembler) SubmitSwap(ctx context.Context, plan *domain.SwapPlan, address string) (string, error) {
	f.swaps = append(f.swaps, plan)
	return "txswap", nil
}

func (f *fakeAssembler) SubmitDeposit(ctx context.Context, plan *domain.LiquidityPlan, address string) (string, error) {
	f.deposits = append(f.deposits, plan)
	return "txdeposit", nil
}

func (f *fakeAssembler) SubmitWithdraw(ctx context.Context, plan *domain.LiquidityPlan, address string) (string, error) {
	f.withdraws = append(f.withdraws, plan)
	return "txwithdraw", nil
}

func (f *fakeAssembler) CancelOrder(ctx context.Context, txHash, address string) (string, error) {
	f.cancels = append(f.cancels, txHash)
	return "txcancel", nil
}

func testPool() *domain.PoolState {
	return &domain.PoolState{
		ID:        testPoolID,
		AssetA:    asset.ADA,
		AssetB:    asset.MIN,
		ReserveA:  big.NewInt(1_000_000),
		ReserveB:  big.NewInt(2_000_000),
		TotalLP:   big.NewInt(1_000_000),
		LPAssetID: asset.NewTokenAssetID("lp0000000000000000000000000000000000000000000000000000ff", "6c70"),
		Fee:       ammath.Fee{Num: 3, Den: 1000},
	}
}

func newTestCore(t *testing.T, pools *fakePools, asm *fakeAssembler, adjuster QuoteAdjuster) *Core {
	t.Helper()
	return NewCore(Config{
		Name:          "testdex",
		Network:       "preprod",
		DefaultPoolID: testPoolID,
		SlippagePct:   1,
		NetworkFee:    asset.NewAmountFromUint64(asset.ADA, 2_000_000),
	}, Deps{
		Pools:     pools,
		Assembler: asm,
		Log:       logger.New(io.Discard, logger.LevelError, "test"),
	}, adjuster)
}

func TestGetSwapQuoteSell(t *testing.T) {
	core := newTestCore(t, &fakePools{pool: testPool()}, &fakeAssembler{}, nil)

	q, err := core.GetSwapQuote(context.Background(), app.SwapQuoteRequest{
		Base:   asset.ADA,
		Quote:  asset.MIN,
		Amount: asset.NewAmountFromUint64(asset.ADA, 10_000),
		Side:   domain.SideSell,
	})
	if err != nil {
		t.Fatalf("GetSwapQuote: %v", err)
	}

	if got := q.ExpectedOut.Raw().Int64(); got != 19_743 {
		t.Errorf("ExpectedOut = %d, want 19743", got)
	}
	if got := q.Limit.Raw().Int64(); got != 19_545 {
		t.Errorf("Limit = %d, want 19545 (1%% below expected)", got)
	}
	if q.PoolID != testPoolID {
		t.Errorf("PoolID = %s, want default %s", q.PoolID, testPoolID)
	}
	if !q.ExpectedIn.Asset().Equals(asset.ADA) || !q.ExpectedOut.Asset().Equals(asset.MIN) {
		t.Error("quote amounts denominated in the wrong assets")
	}
}

func TestGetSwapQuoteBuy(t *testing.T) {
	core := newTestCore(t, &fakePools{pool: testPool()}, &fakeAssembler{}, nil)

	q, err := core.GetSwapQuote(context.Background(), app.SwapQuoteRequest{
		Base:   asset.MIN,
		Quote:  asset.ADA,
		Amount: asset.NewAmountFromUint64(asset.MIN, 19_743),
		Side:   domain.SideBuy,
	})
	if err != nil {
		t.Fatalf("GetSwapQuote: %v", err)
	}

	// Buying the exact-in output requires at most the original input.
	if got := q.ExpectedIn.Raw().Int64(); got != 10_000 {
		t.Errorf("ExpectedIn = %d, want 10000", got)
	}
	if got := q.Limit.Raw().Int64(); got != 10_100 {
		t.Errorf("Limit = %d, want 10100 (1%% above expected)", got)
	}
	if !q.ExpectedIn.Asset().Equals(asset.ADA) {
		t.Error("buy quote must spend the quote asset")
	}
}

func TestGetSwapQuoteSlippageOverride(t *testing.T) {
	core := newTestCore(t, &fakePools{pool: testPool()}, &fakeAssembler{}, nil)

	pct := uint64(5)
	q, err := core.GetSwapQuote(context.Background(), app.SwapQuoteRequest{
		Base:        asset.ADA,
		Quote:       asset.MIN,
		Amount:      asset.NewAmountFromUint64(asset.ADA, 10_000),
		Side:        domain.SideSell,
		SlippagePct: &pct,
	})
	if err != nil {
		t.Fatalf("GetSwapQuote: %v", err)
	}
	if got := q.Limit.Raw().Int64(); got != 18_755 { // 19743*95/100
		t.Errorf("Limit = %d, want 18755", got)
	}
}

func TestGetSwapQuotePairMismatch(t *testing.T) {
	core := newTestCore(t, &fakePools{pool: testPool()}, &fakeAssembler{}, nil)

	_, err := core.GetSwapQuote(context.Background(), app.SwapQuoteRequest{
		Base:   asset.ADA,
		Quote:  asset.SUNDAE,
		Amount: asset.NewAmountFromUint64(asset.ADA, 10_000),
		Side:   domain.SideSell,
	})
	if got := apperror.GetCode(err); got != apperror.CodeValidationError {
		t.Errorf("code = %s, want %s", got, apperror.CodeValidationError)
	}
}

func TestPoolIDRequiredWithoutDefault(t *testing.T) {
	core := NewCore(Config{
		Name:        "testdex",
		Network:     "preprod",
		SlippagePct: 1,
		NetworkFee:  asset.NewAmountFromUint64(asset.ADA, 2_000_000),
	}, Deps{
		Pools:     &fakePools{pool: testPool()},
		Assembler: &fakeAssembler{},
		Log:       logger.New(io.Discard, logger.LevelError, "test"),
	}, nil)

	_, err := core.GetSwapQuote(context.Background(), app.SwapQuoteRequest{
		Base:   asset.ADA,
		Quote:  asset.MIN,
		Amount: asset.NewAmountFromUint64(asset.ADA, 10_000),
		Side:   domain.SideSell,
	})
	if got := apperror.GetCode(err); got != apperror.CodeRequiredField {
		t.Errorf("code = %s, want %s", got, apperror.CodeRequiredField)
	}
}

func TestExecuteSwapSubmitsPlanFromQuote(t *testing.T) {
	asm := &fakeAssembler{}
	core := newTestCore(t, &fakePools{pool: testPool()}, asm, nil)

	receipt, err := core.ExecuteSwap(context.Background(), app.SwapQuoteRequest{
		Base:   asset.ADA,
		Quote:  asset.MIN,
		Amount: asset.NewAmountFromUint64(asset.ADA, 10_000),
		Side:   domain.SideSell,
	}, "addr1test")
	if err != nil {
		t.Fatalf("ExecuteSwap: %v", err)
	}
	if receipt.TxHash != "txswap" {
		t.Errorf("TxHash = %s, want txswap", receipt.TxHash)
	}
	if len(asm.swaps) != 1 {
		t.Fatalf("assembler received %d plans, want 1", len(asm.swaps))
	}
	plan := asm.swaps[0]
	if plan.Out.Raw().Int64() != 19_743 || plan.Limit.Raw().Int64() != 19_545 {
		t.Errorf("plan carries (%s, %s), want quote amounts", plan.Out.Raw(), plan.Limit.Raw())
	}
}

func TestAddLiquidityAutoCorrects(t *testing.T) {
	asm := &fakeAssembler{}
	core := newTestCore(t, &fakePools{pool: testPool()}, asm, nil)

	receipt, err := core.AddLiquidity(context.Background(), app.AddLiquidityRequest{
		AmountA: asset.NewAmountFromUint64(asset.ADA, 1_000),
		AmountB: asset.NewAmountFromUint64(asset.MIN, 5_000),
	}, "addr1test")
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	plan := receipt.Plan
	if plan.AmountA.Raw().Int64() != 1_000 || plan.AmountB.Raw().Int64() != 2_000 {
		t.Errorf("corrected amounts = (%s, %s), want (1000, 2000)",
			plan.AmountA.Raw(), plan.AmountB.Raw())
	}
	if plan.LP.Int64() != 1_000 {
		t.Errorf("LP minted = %s, want 1000", plan.LP)
	}
	if len(asm.deposits) != 1 {
		t.Errorf("assembler received %d deposits, want 1", len(asm.deposits))
	}
}

func TestAddLiquiditySwappedOrder(t *testing.T) {
	core := newTestCore(t, &fakePools{pool: testPool()}, &fakeAssembler{}, nil)

	// Amounts given MIN-first still map onto the pool's A/B order.
	receipt, err := core.AddLiquidity(context.Background(), app.AddLiquidityRequest{
		AmountA: asset.NewAmountFromUint64(asset.MIN, 5_000),
		AmountB: asset.NewAmountFromUint64(asset.ADA, 1_000),
	}, "addr1test")
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if receipt.Plan.AmountA.Raw().Int64() != 1_000 || receipt.Plan.AmountB.Raw().Int64() != 2_000 {
		t.Errorf("corrected amounts = (%s, %s), want (1000, 2000)",
			receipt.Plan.AmountA.Raw(), receipt.Plan.AmountB.Raw())
	}
}

func TestRemoveLiquidity(t *testing.T) {
	pool := testPool()
	pools := &fakePools{
		pool: pool,
		balances: map[string]*big.Int{
			"addr1rich": big.NewInt(500_000),
			"addr1dust": big.NewInt(1),
		},
	}

	t.Run("happy_path", func(t *testing.T) {
		asm := &fakeAssembler{}
		core := newTestCore(t, pools, asm, nil)

		receipt, err := core.RemoveLiquidity(context.Background(), app.RemoveLiquidityRequest{
			DecreasePercent: 50,
		}, "addr1rich")
		if err != nil {
			t.Fatalf("RemoveLiquidity: %v", err)
		}
		plan := receipt.Plan
		if plan.LP.Int64() != 250_000 {
			t.Errorf("LP burned = %s, want 250000", plan.LP)
		}
		if plan.AmountA.Raw().Int64() != 250_000 || plan.AmountB.Raw().Int64() != 500_000 {
			t.Errorf("withdraw amounts = (%s, %s), want (250000, 500000)",
				plan.AmountA.Raw(), plan.AmountB.Raw())
		}
		if len(asm.withdraws) != 1 {
			t.Errorf("assembler received %d withdrawals, want 1", len(asm.withdraws))
		}
	})

	t.Run("no_position", func(t *testing.T) {
		core := newTestCore(t, pools, &fakeAssembler{}, nil)
		_, err := core.RemoveLiquidity(context.Background(), app.RemoveLiquidityRequest{
			DecreasePercent: 50,
		}, "addr1empty")
		if got := apperror.GetCode(err); got != apperror.CodeInsufficientPosition {
			t.Errorf("code = %s, want %s", got, apperror.CodeInsufficientPosition)
		}
	})

	t.Run("zero_withdrawal", func(t *testing.T) {
		core := newTestCore(t, pools, &fakeAssembler{}, nil)
		_, err := core.RemoveLiquidity(context.Background(), app.RemoveLiquidityRequest{
			DecreasePercent: 50, // 50% of 1 LP token truncates to zero
		}, "addr1dust")
		if got := apperror.GetCode(err); got != apperror.CodeZeroWithdrawal {
			t.Errorf("code = %s, want %s", got, apperror.CodeZeroWithdrawal)
		}
	})
}

func TestCancelOrder(t *testing.T) {
	asm := &fakeAssembler{}
	core := newTestCore(t, &fakePools{pool: testPool()}, asm, nil)

	receipt, err := core.CancelOrder(context.Background(), "txpending", "addr1test")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if receipt.TxHash != "txcancel" {
		t.Errorf("TxHash = %s, want txcancel", receipt.TxHash)
	}
	if len(asm.cancels) != 1 || asm.cancels[0] != "txpending" {
		t.Errorf("cancels = %v, want [txpending]", asm.cancels)
	}
}

func TestPoolPriceBuckets(t *testing.T) {
	core := newTestCore(t, &fakePools{pool: testPool()}, &fakeAssembler{}, nil)

	series, err := core.PoolPrice(context.Background(), app.PoolPriceRequest{
		PeriodSeconds:   3600,
		IntervalSeconds: 600,
	})
	if err != nil {
		t.Fatalf("PoolPrice: %v", err)
	}
	if len(series.Points) != 6 {
		t.Fatalf("len(Points) = %d, want 6", len(series.Points))
	}
	// 2e6 MIN over 1e6 ADA at equal decimals: price 2.
	if !series.Points[0].Price.Equal(series.Points[5].Price) {
		t.Error("all buckets must carry the same snapshot price")
	}
	if series.Points[0].Price.String() != "2" {
		t.Errorf("price = %s, want 2", series.Points[0].Price)
	}
	if !series.Points[0].Timestamp.Before(series.Points[5].Timestamp) {
		t.Error("timestamps must ascend")
	}
}
