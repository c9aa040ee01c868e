package ammvenue

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/logger"
)

type fakeWallets struct {
	keys map[string]ed25519.PrivateKey
}

func (f *fakeWallets) SigningKey(ctx context.Context, address string) (ed25519.PrivateKey, error) {
	key, ok := f.keys[address]
	if !ok {
		return nil, apperror.New(apperror.CodeWalletNotFound)
	}
	return key, nil
}

func (f *fakeWallets) Addresses() ([]string, error) {
	addrs := make([]string, 0, len(f.keys))
	for a := range f.keys {
		addrs = append(addrs, a)
	}
	return addrs, nil
}

type captureSubmitter struct {
	envelope []byte
}

func (c *captureSubmitter) SubmitTx(ctx context.Context, rawTx []byte) (string, error) {
	c.envelope = rawTx
	return "txhash", nil
}

func newTestAssembler(t *testing.T) (*Assembler, *captureSubmitter) {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sub := &captureSubmitter{}
	asm := NewAssembler("testdex", "preprod",
		&fakeWallets{keys: map[string]ed25519.PrivateKey{"addr1test": key}},
		sub, logger.New(io.Discard, logger.LevelError, "test"))
	return asm, sub
}

func TestSubmitSwapEnvelope(t *testing.T) {
	asm, sub := newTestAssembler(t)

	plan := &domain.SwapPlan{
		PoolID: testPoolID,
		Side:   domain.SideSell,
		In:     asset.NewAmountFromUint64(asset.ADA, 10_000),
		Out:    asset.NewAmountFromUint64(asset.MIN, 19_743),
		Limit:  asset.NewAmountFromUint64(asset.MIN, 19_545),
	}
	hash, err := asm.SubmitSwap(context.Background(), plan, "addr1test")
	if err != nil {
		t.Fatalf("SubmitSwap: %v", err)
	}
	if hash != "txhash" {
		t.Errorf("hash = %s, want txhash", hash)
	}

	var env orderEnvelope
	if err := json.Unmarshal(sub.envelope, &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if env.Venue != "testdex" || env.Network != "preprod" || env.Kind != "swap" {
		t.Errorf("envelope header = %s/%s/%s", env.Venue, env.Network, env.Kind)
	}
	if env.Address != "addr1test" {
		t.Errorf("address = %s", env.Address)
	}

	var payload swapPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.In != "10000" || payload.Out != "19743" || payload.Limit != "19545" {
		t.Errorf("payload amounts = %s/%s/%s", payload.In, payload.Out, payload.Limit)
	}

	// The signature covers the blake2b-256 digest of the payload bytes.
	pub, err := hex.DecodeString(env.PublicKey)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	sig, err := hex.DecodeString(env.Signature)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	digest := blake2b.Sum256(env.Payload)
	if !ed25519.Verify(ed25519.PublicKey(pub), digest[:], sig) {
		t.Error("signature does not verify")
	}
}

func TestSubmitWithdrawEnvelope(t *testing.T) {
	asm, sub := newTestAssembler(t)

	lpAsset := asset.NewTokenAssetID(
		"00000000000000000000000000000000000000000000000000000000", "6c70")
	plan := &domain.LiquidityPlan{
		PoolID:    testPoolID,
		AmountA:   asset.NewAmountFromUint64(asset.ADA, 250_000),
		AmountB:   asset.NewAmountFromUint64(asset.MIN, 500_000),
		LP:        big.NewInt(250_000),
		LPAssetID: lpAsset,
	}
	if _, err := asm.SubmitWithdraw(context.Background(), plan, "addr1test"); err != nil {
		t.Fatalf("SubmitWithdraw: %v", err)
	}

	var env orderEnvelope
	if err := json.Unmarshal(sub.envelope, &env); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	var payload liquidityPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.LP != "250000" || payload.LPAsset != lpAsset.String() {
		t.Errorf("payload = %+v", payload)
	}
}

func TestSubmitUnknownAddress(t *testing.T) {
	asm, _ := newTestAssembler(t)

	_, err := asm.SubmitSwap(context.Background(), &domain.SwapPlan{
		PoolID: testPoolID,
		Side:   domain.SideSell,
		In:     asset.NewAmountFromUint64(asset.ADA, 1),
		Out:    asset.NewAmountFromUint64(asset.MIN, 1),
		Limit:  asset.NewAmountFromUint64(asset.MIN, 1),
	}, "addr1unknown")
	if got := apperror.GetCode(err); got != apperror.CodeWalletNotFound {
		t.Errorf("code = %s, want %s", got, apperror.CodeWalletNotFound)
	}
}

func TestCancelOrderRequiresTxHash(t *testing.T) {
	asm, _ := newTestAssembler(t)

	_, err := asm.CancelOrder(context.Background(), "", "addr1test")
	if got := apperror.GetCode(err); got != apperror.CodeRequiredField {
		t.Errorf("code = %s, want %s", got, apperror.CodeRequiredField)
	}
}
