package app

import (
	"errors"
	"fmt"

	"github.com/cardex/gateway/business/gateway/domain"
	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/asset"
)

// Normalizer turns wire-level request fields (symbols, decimal strings,
// side names) into domain values against one network's token catalog.
type Normalizer struct {
	tokens *asset.Catalog
}

// NewNormalizer creates a normalizer for the given catalog.
func NewNormalizer(tokens *asset.Catalog) *Normalizer {
	return &Normalizer{tokens: tokens}
}

// Asset resolves a ticker symbol. Symbols absent from the catalog fail
// with TOKEN_NOT_SUPPORTED.
func (n *Normalizer) Asset(symbol string) (*asset.Asset, error) {
	if symbol == "" {
		return nil, apperror.New(apperror.CodeRequiredField,
			apperror.WithContext("token symbol"))
	}
	a, ok := n.tokens.GetBySymbol(symbol)
	if !ok {
		return nil, apperror.New(apperror.CodeTokenNotSupported,
			apperror.WithContext(fmt.Sprintf("symbol=%s", symbol)))
	}
	return a, nil
}

// Amount parses a decimal amount string into a raw Amount. Parsing is
// exact: excess precision and non-positive values are rejected.
func (n *Normalizer) Amount(a *asset.Asset, value string) (asset.Amount, error) {
	if value == "" {
		return asset.Amount{}, apperror.New(apperror.CodeRequiredField,
			apperror.WithContext("amount"))
	}

	amt, err := asset.ParseString(a, value)
	if err != nil {
		code := apperror.CodeInvalidAmount
		if errors.Is(err, asset.ErrTooManyDecimals) {
			code = apperror.CodeValidationError
		}
		return asset.Amount{}, apperror.New(code,
			apperror.WithContext(fmt.Sprintf("amount=%s asset=%s", value, a.Symbol())),
			apperror.WithCause(err))
	}
	if !amt.IsPositive() {
		return asset.Amount{}, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(fmt.Sprintf("amount=%s must be positive", value)))
	}
	return amt, nil
}

// Side parses the trade direction.
func (n *Normalizer) Side(s string) (domain.Side, error) {
	side, err := domain.ParseSide(s)
	if err != nil {
		return "", apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("side=%s", s)),
			apperror.WithCause(err))
	}
	return side, nil
}

// ValidatePercent validates a whole-number percentage in (0, 100].
func ValidatePercent(p uint64) error {
	if p == 0 || p > 100 {
		return apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("percent=%d must be in (0, 100]", p)))
	}
	return nil
}
