// Package domain contains the core types of the gateway context.
package domain

import "fmt"

// Side is the direction of a trade, seen from the base asset.
type Side string

const (
	// SideBuy acquires the base asset: the base amount is an exact
	// output and the quote amount spent is computed.
	SideBuy Side = "BUY"
	// SideSell disposes of the base asset: the base amount is an exact
	// input and the quote amount received is computed.
	SideSell Side = "SELL"
)

// ParseSide parses a side string, case sensitive.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("invalid side %q, expected BUY or SELL", s)
	}
}
