package venue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cardex/gateway/internal/apperror"
	"github.com/cardex/gateway/internal/connector"
)

// Handle is a live venue instance bound to one network.
type Handle interface {
	Name() string
	Capabilities() Capability
}

// Factory creates a venue handle for one network.
type Factory func(ctx context.Context, network string) (Handle, error)

type entry struct {
	caps    Capability
	factory Factory
}

// Catalog maps venue names to their declared capabilities and lazily
// constructs one handle per (venue, network). Handles are cached and
// reused across requests.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]entry

	instances *connector.Registry[Handle]
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	c := &Catalog{
		entries: make(map[string]entry),
	}
	c.instances = connector.NewRegistry(func(ctx context.Context, key connector.Key) (Handle, error) {
		c.mu.RLock()
		e, ok := c.entries[key.Chain]
		c.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("venue: %s not registered", key.Chain)
		}
		return e.factory(ctx, key.Network)
	})
	return c
}

// Register adds a venue with its declared capability set.
func (c *Catalog) Register(name string, caps Capability, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("venue: invalid registration for %q", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("venue: %s already registered", name)
	}
	c.entries[name] = entry{caps: caps, factory: f}
	return nil
}

// Capabilities returns the declared capability set for a venue.
func (c *Catalog) Capabilities(name string) (Capability, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e.caps, ok
}

// Names returns the registered venue names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the handle for a venue on a network, checking the
// required capabilities before any instance is constructed. An unknown
// venue fails with UNKNOWN_CONNECTOR; a known venue missing a required
// capability fails with UNSUPPORTED_OPERATION.
func (c *Catalog) Resolve(ctx context.Context, name, network string, required Capability) (Handle, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		return nil, apperror.New(apperror.CodeUnknownConnector,
			apperror.WithContext(fmt.Sprintf("connector=%s available=%v", name, c.Names())))
	}
	if !e.caps.Has(required) {
		return nil, apperror.New(apperror.CodeUnsupportedOperation,
			apperror.WithContext(fmt.Sprintf("connector=%s required=%s supported=%s",
				name, required, e.caps)))
	}

	h, err := c.instances.GetOrCreate(ctx, connector.Key{Chain: name, Network: network})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeChainInitFailed,
			fmt.Sprintf("connector=%s network=%s", name, network))
	}
	return h, nil
}

// Close releases the handle for one (venue, network).
func (c *Catalog) Close(name, network string) error {
	return c.instances.Close(connector.Key{Chain: name, Network: network})
}

// CloseAll releases every cached handle.
func (c *Catalog) CloseAll() error {
	return c.instances.CloseAll()
}
