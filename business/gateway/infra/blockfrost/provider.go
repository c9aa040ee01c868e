// Package blockfrost implements the chain data provider ports on top of
// a Blockfrost-compatible REST API.
package blockfrost

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cardex/gateway/business/gateway/app"
	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/ammath"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/circuitbreaker"
	"github.com/cardex/gateway/internal/httpclient"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/ratelimit"
)

const lovelaceUnit = "lovelace"

// Config holds the provider settings for one network.
type Config struct {
	BaseURL           string
	ProjectID         string
	Network           string
	RequestTimeout    time.Duration
	RequestsPerMinute int
}

// Provider reads pool snapshots and balances and submits transactions.
type Provider struct {
	client  *httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker[[]byte]
	tokens  *asset.Catalog
	log     logger.LoggerInterface
	network string
}

var _ app.PoolStateProvider = (*Provider)(nil)

// NewProvider creates a provider for one network. The token catalog is
// used to enrich pool assets with registered metadata; unknown tokens
// fall back to the metadata the API returns.
func NewProvider(cfg Config, tokens *asset.Catalog, log logger.LoggerInterface) (*Provider, error) {
	client, err := httpclient.New(
		httpclient.WithProviderName("blockfrost-"+cfg.Network),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithTimeout(cfg.RequestTimeout),
		httpclient.WithHeaders(map[string]string{"project_id": cfg.ProjectID}),
		httpclient.WithResponseErrorHandler(mapStatusError),
	)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("blockfrost-" + cfg.Network)),
		tokens:  tokens,
		log:     log,
		network: cfg.Network,
	}, nil
}

// mapStatusError translates provider HTTP statuses into domain errors.
func mapStatusError(statusCode int, body []byte) error {
	message := gjson.GetBytes(body, "message").String()
	switch {
	case statusCode == 404:
		return apperror.New(apperror.CodeNotFound, apperror.WithContext(message))
	case statusCode == 400 && (strings.Contains(message, "ValueNotConserved") ||
		strings.Contains(message, "BadInputsUTxO")):
		return apperror.New(apperror.CodeInsufficientFunds, apperror.WithContext(message))
	case statusCode == 429 || statusCode == 402:
		return apperror.New(apperror.CodeUpstreamUnavailable,
			apperror.WithContext("provider quota exhausted"))
	case statusCode >= 500:
		return apperror.New(apperror.CodeUpstreamUnavailable,
			apperror.WithContext(fmt.Sprintf("provider status %d", statusCode)))
	default:
		return nil
	}
}

// get runs one rate-limited GET through the circuit breaker.
func (p *Provider) get(ctx context.Context, path string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, apperror.Upstream(err, apperror.CodeUpstreamTimeout, path)
	}

	body, err := p.breaker.Execute(func() ([]byte, error) {
		return p.client.Get(ctx, path, nil)
	})
	if err != nil {
		if err == circuitbreaker.ErrOpen {
			return nil, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithContext(fmt.Sprintf("network=%s", p.network)))
		}
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.Upstream(err, apperror.CodeUpstreamUnavailable, path)
	}
	return body, nil
}

// PoolByID fetches one pool snapshot.
func (p *Provider) PoolByID(ctx context.Context, poolID string) (*domain.PoolState, error) {
	if poolID == "" {
		return nil, apperror.New(apperror.CodeRequiredField, apperror.WithContext("poolId"))
	}

	body, err := p.get(ctx, "/pools/"+poolID)
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			return nil, apperror.New(apperror.CodePoolNotFound,
				apperror.WithContext(fmt.Sprintf("poolId=%s", poolID)),
				apperror.WithCause(err))
		}
		return nil, err
	}

	return p.parsePool(poolID, body)
}

func (p *Provider) parsePool(poolID string, body []byte) (*domain.PoolState, error) {
	doc := gjson.ParseBytes(body)

	assetA, err := p.resolveUnit(doc.Get("asset_a"))
	if err != nil {
		return nil, err
	}
	assetB, err := p.resolveUnit(doc.Get("asset_b"))
	if err != nil {
		return nil, err
	}

	reserveA, okA := new(big.Int).SetString(doc.Get("reserve_a").String(), 10)
	reserveB, okB := new(big.Int).SetString(doc.Get("reserve_b").String(), 10)
	totalLP, okL := new(big.Int).SetString(doc.Get("total_lp").String(), 10)
	if !okA || !okB || !okL {
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext(fmt.Sprintf("poolId=%s malformed reserves", poolID)))
	}

	fee, err := ammath.NewFee(doc.Get("fee_numerator").Uint(), doc.Get("fee_denominator").Uint())
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext(fmt.Sprintf("poolId=%s malformed fee", poolID)),
			apperror.WithCause(err))
	}

	lpAsset, err := parseUnit(doc.Get("lp_asset").String())
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext(fmt.Sprintf("poolId=%s malformed lp asset", poolID)),
			apperror.WithCause(err))
	}

	return &domain.PoolState{
		ID:        poolID,
		AssetA:    assetA,
		AssetB:    assetB,
		ReserveA:  reserveA,
		ReserveB:  reserveB,
		TotalLP:   totalLP,
		LPAssetID: lpAsset,
		Fee:       fee,
	}, nil
}

// resolveUnit maps a pool asset document to an Asset, preferring the
// registered catalog entry over the API's metadata.
func (p *Provider) resolveUnit(doc gjson.Result) (*asset.Asset, error) {
	id, err := parseUnit(doc.Get("unit").String())
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext("malformed asset unit"), apperror.WithCause(err))
	}

	if a, ok := p.tokens.Get(id); ok {
		return a, nil
	}

	ticker := doc.Get("ticker").String()
	if ticker == "" {
		return nil, apperror.New(apperror.CodeTokenNotSupported,
			apperror.WithContext(fmt.Sprintf("unit=%s has no registered metadata", id)))
	}
	return asset.NewAsset(id, ticker, uint8(doc.Get("decimals").Uint())), nil
}

// parseUnit parses a Blockfrost asset unit: "lovelace" or the policy id
// (56 hex chars) concatenated with the hex asset name.
func parseUnit(unit string) (asset.AssetID, error) {
	if unit == lovelaceUnit {
		return asset.NewNativeAssetID(), nil
	}
	if len(unit) < 56 {
		return asset.AssetID{}, fmt.Errorf("unit %q too short for a policy id", unit)
	}
	return asset.NewTokenAssetID(unit[:56], unit[56:]), nil
}

// LPBalance returns the address's balance of one LP token.
func (p *Provider) LPBalance(ctx context.Context, address string, lpAsset asset.AssetID) (*big.Int, error) {
	if address == "" {
		return nil, apperror.New(apperror.CodeRequiredField, apperror.WithContext("address"))
	}

	body, err := p.get(ctx, "/addresses/"+address)
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			// Unused address: zero balance, not an error.
			return big.NewInt(0), nil
		}
		return nil, err
	}

	unit := lpAsset.PolicyID() + lpAsset.AssetName()
	if lpAsset.IsNative() {
		unit = lovelaceUnit
	}

	balance := big.NewInt(0)
	var parseErr error
	gjson.GetBytes(body, "amount").ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("unit").String() != unit {
			return true
		}
		quantity, ok := new(big.Int).SetString(entry.Get("quantity").String(), 10)
		if !ok {
			parseErr = apperror.New(apperror.CodeInvalidFormat,
				apperror.WithContext(fmt.Sprintf("address=%s malformed quantity for unit %s", address, unit)))
			return false
		}
		balance = quantity
		return false
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return balance, nil
}

// SubmitTx submits a serialized transaction and returns its hash.
func (p *Provider) SubmitTx(ctx context.Context, rawTx []byte) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", apperror.Upstream(err, apperror.CodeUpstreamTimeout, "tx/submit")
	}

	body, err := p.breaker.Execute(func() ([]byte, error) {
		return p.client.PostRaw(ctx, "/tx/submit", "application/cbor", rawTx)
	})
	if err != nil {
		if err == circuitbreaker.ErrOpen {
			return "", apperror.New(apperror.CodeCircuitOpen,
				apperror.WithContext(fmt.Sprintf("network=%s", p.network)))
		}
		return "", apperror.Upstream(err, apperror.CodeSubmitFailed, "tx/submit")
	}

	hash := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if hash == "" {
		return "", apperror.New(apperror.CodeSubmitFailed,
			apperror.WithContext("provider returned empty tx hash"))
	}
	return hash, nil
}

// Healthy reports whether the provider answers its health endpoint.
func (p *Provider) Healthy(ctx context.Context) (bool, string) {
	body, err := p.get(ctx, "/health")
	if err != nil {
		return false, err.Error()
	}
	if !gjson.GetBytes(body, "is_healthy").Bool() {
		return false, "provider reports unhealthy"
	}
	return true, ""
}
