package asset

import (
	"fmt"
	"sync"
)

// Catalog is a thread-safe token catalog for one (chain, network). Request
// symbols resolve against it; an absent symbol means the token is not
// supported on that network.
type Catalog struct {
	byID     map[AssetID]*Asset
	bySymbol map[string]*Asset
	mu       sync.RWMutex
}

// NewCatalog creates a new empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string]*Asset),
	}
}

// Register adds an asset to the catalog.
// Panics if an asset with the same ID or symbol is already registered.
func (c *Catalog) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := a.ID()
	if _, exists := c.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}
	if _, exists := c.bySymbol[a.Symbol()]; exists {
		panic(fmt.Sprintf("asset: symbol %s already registered", a.Symbol()))
	}

	c.byID[id] = a
	c.bySymbol[a.Symbol()] = a
}

// Get retrieves an asset by its ID.
func (c *Catalog) Get(id AssetID) (*Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.byID[id]
	return a, ok
}

// GetBySymbol retrieves an asset by its ticker symbol.
func (c *Catalog) GetBySymbol(symbol string) (*Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.bySymbol[symbol]
	return a, ok
}

// Native retrieves the chain's native currency, if registered.
func (c *Catalog) Native() (*Asset, bool) {
	return c.Get(NewNativeAssetID())
}

// All returns all registered assets.
func (c *Catalog) All() []*Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Asset, 0, len(c.byID))
	for _, a := range c.byID {
		result = append(result, a)
	}
	return result
}

// Count returns the number of registered assets.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
