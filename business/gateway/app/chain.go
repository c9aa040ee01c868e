package app

import (
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/connector"
)

// ChainName is the only chain this gateway currently serves.
const ChainName = "cardano"

// ChainContext bundles the per-network state shared by every request:
// the token catalog and the pool data provider. One instance exists per
// network, managed by the connector registry.
type ChainContext struct {
	Network string
	Tokens  *asset.Catalog
	Pools   PoolStateProvider

	closeFn func() error
}

// NewChainContext creates a chain context. closeFn may be nil.
func NewChainContext(network string, tokens *asset.Catalog, pools PoolStateProvider, closeFn func() error) *ChainContext {
	return &ChainContext{
		Network: network,
		Tokens:  tokens,
		Pools:   pools,
		closeFn: closeFn,
	}
}

// Close releases the context's resources.
func (c *ChainContext) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

var _ connector.Closer = (*ChainContext)(nil)

// ChainRegistry manages one ChainContext per (chain, network).
type ChainRegistry = connector.Registry[*ChainContext]

// NewChainRegistry creates the registry from a context factory.
func NewChainRegistry(factory connector.Factory[*ChainContext]) *ChainRegistry {
	return connector.NewRegistry(factory)
}
