package asset

// Cardano network names
const (
	NetworkMainnet = "mainnet"
	NetworkPreprod = "preprod"
	NetworkPreview = "preview"
)

// Well-known policy IDs on Cardano mainnet
const (
	PolicyMIN    = "29d222ce763455e3d7a09a665ce554f00ac89d2e99a1a83d267170c6"
	PolicySUNDAE = "9a9693a9a37912a5097918f97918d15240c92ab729a0b7c4aa144d77"
	PolicyDJED   = "8db269c3ec630e06ae29f74bc39edd1f87c819f1056206e879a1cd61"
	PolicyIUSD   = "f66d78b4a3cb3d37afa0ec36461e51ecbde00f26c8f0a68f94b69880"
	PolicyWMT    = "1d7f33bd23d85e1a25d87d86fac4f199c3197a2f7afeb662a0f34e1e"
)

// Well-known AssetIDs on mainnet
var (
	IDADA    = NewNativeAssetID()
	IDMIN    = NewTokenAssetID(PolicyMIN, "4d494e")
	IDSUNDAE = NewTokenAssetID(PolicySUNDAE, "53554e444145")
	IDDJED   = NewTokenAssetID(PolicyDJED, "446a65644d6963726f555344")
	IDIUSD   = NewTokenAssetID(PolicyIUSD, "69555344")
	IDWMT    = NewTokenAssetID(PolicyWMT, "776f726c646d6f62696c65746f6b656e")
)

// Well-known Assets (pre-created instances)
var (
	ADA    = NewAssetWithName(IDADA, "ADA", "Cardano", 6)
	MIN    = NewAssetWithName(IDMIN, "MIN", "Minswap", 6)
	SUNDAE = NewAssetWithName(IDSUNDAE, "SUNDAE", "Sundae", 6)
	DJED   = NewAssetWithName(IDDJED, "DJED", "Djed MicroUSD", 6)
	IUSD   = NewAssetWithName(IDIUSD, "iUSD", "Indigo USD", 6)
	WMT    = NewAssetWithName(IDWMT, "WMT", "World Mobile Token", 6)
)

// DefaultCatalog returns a catalog pre-populated with the well-known
// tokens for the given network. Test networks only carry the native
// currency; their token policies differ per deployment and are
// registered from configuration instead.
func DefaultCatalog(network string) *Catalog {
	c := NewCatalog()
	c.Register(ADA)

	if network == NetworkMainnet {
		c.Register(MIN)
		c.Register(SUNDAE)
		c.Register(DJED)
		c.Register(IUSD)
		c.Register(WMT)
	}

	return c
}

// MustNewToken creates a native-script token asset.
// This is a convenience function for registering custom tokens.
func MustNewToken(policyID, assetNameHex, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(policyID, assetNameHex)
	return NewAssetWithName(id, symbol, name, decimals)
}
