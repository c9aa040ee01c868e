package ammvenue

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/cardex/gateway/business/gateway/app"
	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/logger"
)

// TxSubmitter posts a serialized transaction to the chain data provider.
type TxSubmitter interface {
	SubmitTx(ctx context.Context, rawTx []byte) (string, error)
}

// Assembler builds, signs and submits venue order transactions. Orders
// are serialized as signed envelopes; the signing key is fetched per
// call from the wallet store and never retained.
type Assembler struct {
	venue     string
	network   string
	wallets   app.WalletStore
	submitter TxSubmitter
	log       logger.LoggerInterface
}

var _ app.TxAssembler = (*Assembler)(nil)

// NewAssembler creates an assembler for one venue and network.
func NewAssembler(venueName, network string, wallets app.WalletStore, submitter TxSubmitter, log logger.LoggerInterface) *Assembler {
	return &Assembler{
		venue:     venueName,
		network:   network,
		wallets:   wallets,
		submitter: submitter,
		log:       log,
	}
}

type orderEnvelope struct {
	Venue     string          `json:"venue"`
	Network   string          `json:"network"`
	Kind      string          `json:"kind"`
	Address   string          `json:"address"`
	Payload   json.RawMessage `json:"payload"`
	PublicKey string          `json:"public_key"`
	Signature string          `json:"signature"`
}

type swapPayload struct {
	PoolID string `json:"pool_id"`
	Side   string `json:"side"`
	In     string `json:"in"`
	Out    string `json:"out"`
	Limit  string `json:"limit"`
}

type liquidityPayload struct {
	PoolID  string `json:"pool_id"`
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
	LP      string `json:"lp"`
	LPAsset string `json:"lp_asset"`
}

type cancelPayload struct {
	TxHash string `json:"tx_hash"`
}

// build serializes the payload into a signed envelope. The signature
// covers the blake2b-256 digest of the payload bytes.
func (a *Assembler) build(ctx context.Context, kind, address string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.New(apperror.CodeBuildFailed,
			apperror.WithContext(fmt.Sprintf("kind=%s", kind)), apperror.WithCause(err))
	}

	key, err := a.wallets.SigningKey(ctx, address)
	if err != nil {
		return nil, err
	}

	digest := blake2b.Sum256(body)
	sig := ed25519.Sign(key, digest[:])
	pub := key.Public().(ed25519.PublicKey)

	envelope, err := json.Marshal(orderEnvelope{
		Venue:     a.venue,
		Network:   a.network,
		Kind:      kind,
		Address:   address,
		Payload:   body,
		PublicKey: hex.EncodeToString(pub),
		Signature: hex.EncodeToString(sig),
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeBuildFailed,
			apperror.WithContext(fmt.Sprintf("kind=%s", kind)), apperror.WithCause(err))
	}
	return envelope, nil
}

func (a *Assembler) submit(ctx context.Context, kind string, envelope []byte) (string, error) {
	hash, err := a.submitter.SubmitTx(ctx, envelope)
	if err != nil {
		if apperror.IsAppError(err) {
			return "", err
		}
		return "", apperror.Wrap(err, apperror.CodeSubmitFailed, fmt.Sprintf("kind=%s", kind))
	}
	a.log.Debug(ctx, "order submitted", "venue", a.venue, "kind", kind, "txHash", hash)
	return hash, nil
}

// SubmitSwap builds and submits a swap order.
func (a *Assembler) SubmitSwap(ctx context.Context, plan *domain.SwapPlan, address string) (string, error) {
	envelope, err := a.build(ctx, "swap", address, swapPayload{
		PoolID: plan.PoolID,
		Side:   string(plan.Side),
		In:     plan.In.Raw().String(),
		Out:    plan.Out.Raw().String(),
		Limit:  plan.Limit.Raw().String(),
	})
	if err != nil {
		return "", err
	}
	return a.submit(ctx, "swap", envelope)
}

// SubmitDeposit builds and submits a liquidity deposit.
func (a *Assembler) SubmitDeposit(ctx context.Context, plan *domain.LiquidityPlan, address string) (string, error) {
	envelope, err := a.build(ctx, "deposit", address, liquidityPayload{
		PoolID:  plan.PoolID,
		AmountA: plan.AmountA.Raw().String(),
		AmountB: plan.AmountB.Raw().String(),
		LP:      plan.LP.String(),
		LPAsset: plan.LPAssetID.String(),
	})
	if err != nil {
		return "", err
	}
	return a.submit(ctx, "deposit", envelope)
}

// SubmitWithdraw builds and submits a liquidity withdrawal.
func (a *Assembler) SubmitWithdraw(ctx context.Context, plan *domain.LiquidityPlan, address string) (string, error) {
	envelope, err := a.build(ctx, "withdraw", address, liquidityPayload{
		PoolID:  plan.PoolID,
		AmountA: plan.AmountA.Raw().String(),
		AmountB: plan.AmountB.Raw().String(),
		LP:      plan.LP.String(),
		LPAsset: plan.LPAssetID.String(),
	})
	if err != nil {
		return "", err
	}
	return a.submit(ctx, "withdraw", envelope)
}

// CancelOrder builds and submits a cancellation for a pending order.
func (a *Assembler) CancelOrder(ctx context.Context, txHash, address string) (string, error) {
	if txHash == "" {
		return "", apperror.New(apperror.CodeRequiredField, apperror.WithContext("txHash"))
	}
	envelope, err := a.build(ctx, "cancel", address, cancelPayload{TxHash: txHash})
	if err != nil {
		return "", err
	}
	return a.submit(ctx, "cancel", envelope)
}
