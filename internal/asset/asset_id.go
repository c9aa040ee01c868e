// Package asset provides a type-safe model for on-chain assets.
// The core uses big.Int for exact smallest-unit representation.
// decimal.Decimal is only used at boundaries (parsing, display).
package asset

import "fmt"

// AssetID uniquely identifies an asset by issuing policy and asset name.
// The native currency carries an empty policy id. This is the TRUE
// identity - not the symbol.
type AssetID struct {
	policyID  string // hex-encoded issuing policy; empty = native currency
	assetName string // hex-encoded sub-identifier within the policy
}

// NewNativeAssetID creates the AssetID for the chain's native currency.
func NewNativeAssetID() AssetID {
	return AssetID{}
}

// NewTokenAssetID creates an AssetID for a policy-issued token.
func NewTokenAssetID(policyID, assetName string) AssetID {
	if policyID == "" {
		panic("asset: empty policy id - use NewNativeAssetID for the native currency")
	}
	return AssetID{policyID: policyID, assetName: assetName}
}

// ParseAssetID parses the canonical "policyID.assetName" form. The native
// marker "lovelace" (and the empty string) parse to the native AssetID.
func ParseAssetID(s string) (AssetID, error) {
	if s == "" || s == "lovelace" {
		return NewNativeAssetID(), nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			if i == 0 {
				return AssetID{}, fmt.Errorf("asset: invalid asset id %q", s)
			}
			return AssetID{policyID: s[:i], assetName: s[i+1:]}, nil
		}
	}
	// A bare policy id denotes the policy's unnamed asset.
	return AssetID{policyID: s}, nil
}

// PolicyID returns the issuing policy id (empty for the native currency).
func (id AssetID) PolicyID() string {
	return id.policyID
}

// AssetName returns the sub-identifier within the policy.
func (id AssetID) AssetName() string {
	return id.assetName
}

// IsNative returns true if this is the chain's native currency.
func (id AssetID) IsNative() bool {
	return id.policyID == ""
}

// String returns the canonical representation.
func (id AssetID) String() string {
	if id.IsNative() {
		return "lovelace"
	}
	if id.assetName == "" {
		return id.policyID
	}
	return id.policyID + "." + id.assetName
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id.policyID == other.policyID && id.assetName == other.assetName
}
