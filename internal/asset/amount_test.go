package asset

import (
	"errors"
	"math/big"
	"testing"
)

func TestAmountArithmetic(t *testing.T) {
	a := NewAmountFromUint64(ADA, 1_500_000)
	b := NewAmountFromUint64(ADA, 500_000)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Raw().Int64() != 2_000_000 {
		t.Errorf("sum = %s, want 2000000", sum.Raw())
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.Raw().Int64() != 1_000_000 {
		t.Errorf("diff = %s, want 1000000", diff.Raw())
	}

	if _, err := b.Sub(a); !errors.Is(err, ErrNegativeResult) {
		t.Errorf("Sub underflow: err = %v, want ErrNegativeResult", err)
	}

	if _, err := a.Add(NewAmountFromUint64(MIN, 1)); !errors.Is(err, ErrAssetMismatch) {
		t.Errorf("cross-asset Add: err = %v, want ErrAssetMismatch", err)
	}
}

func TestAmountImmutability(t *testing.T) {
	raw := big.NewInt(100)
	a := NewAmount(ADA, raw)

	raw.SetInt64(999)
	if a.Raw().Int64() != 100 {
		t.Error("amount shares the caller's big.Int")
	}

	a.Raw().SetInt64(999)
	if a.Raw().Int64() != 100 {
		t.Error("Raw returns the internal big.Int")
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantRaw int64
		wantErr error
	}{
		{name: "whole", value: "2", wantRaw: 2_000_000},
		{name: "fractional", value: "1.5", wantRaw: 1_500_000},
		{name: "smallest_unit", value: "0.000001", wantRaw: 1},
		{name: "zero", value: "0", wantRaw: 0},
		{name: "excess_precision", value: "0.0000001", wantErr: ErrTooManyDecimals},
		{name: "negative", value: "-1", wantErr: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, err := ParseString(ADA, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseString(%q): %v", tt.value, err)
			}
			if got := amt.Raw().Int64(); got != tt.wantRaw {
				t.Errorf("raw = %d, want %d", got, tt.wantRaw)
			}
		})
	}

	if _, err := ParseString(ADA, "not a number"); err == nil {
		t.Error("garbage input must fail")
	}
}

func TestAmountString(t *testing.T) {
	a := NewAmountFromUint64(ADA, 1_500_000)
	if got := a.String(); got != "1.5 ADA" {
		t.Errorf("String() = %q, want %q", got, "1.5 ADA")
	}
}

func TestCatalogResolution(t *testing.T) {
	c := DefaultCatalog(NetworkMainnet)

	if a, ok := c.GetBySymbol("MIN"); !ok || !a.Equals(MIN) {
		t.Error("MIN not resolvable on mainnet")
	}
	if native, ok := c.Native(); !ok || !native.Equals(ADA) {
		t.Error("native currency not registered")
	}

	// Test networks carry only the native currency.
	preprod := DefaultCatalog(NetworkPreprod)
	if _, ok := preprod.GetBySymbol("MIN"); ok {
		t.Error("MIN must not resolve on preprod by default")
	}
	if preprod.Count() != 1 {
		t.Errorf("preprod catalog holds %d assets, want 1", preprod.Count())
	}
}
