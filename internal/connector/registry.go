// Package connector manages per-(chain, network) singleton instances.
// Expensive chain contexts are created once on first use and shared by
// every request that follows.
package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies one chain context.
type Key struct {
	Chain   string
	Network string
}

func (k Key) String() string {
	return k.Chain + "/" + k.Network
}

// Factory creates a new instance for a key. It is called at most once per
// key per successful initialization; concurrent callers for the same key
// share a single in-flight call.
type Factory[T any] func(ctx context.Context, key Key) (T, error)

// Closer is implemented by instances that hold resources to release.
type Closer interface {
	Close() error
}

// Registry is a lazy singleton registry. A failed initialization is not
// cached: the next GetOrCreate for that key retries the factory.
type Registry[T any] struct {
	factory Factory[T]

	mu        sync.RWMutex
	instances map[Key]T
	group     singleflight.Group
}

// NewRegistry creates a registry backed by the given factory.
func NewRegistry[T any](factory Factory[T]) *Registry[T] {
	if factory == nil {
		panic("connector: nil factory")
	}
	return &Registry[T]{
		factory:   factory,
		instances: make(map[Key]T),
	}
}

// GetOrCreate returns the instance for key, creating it on first use.
// Concurrent first calls for the same key run the factory exactly once.
func (r *Registry[T]) GetOrCreate(ctx context.Context, key Key) (T, error) {
	r.mu.RLock()
	inst, ok := r.instances[key]
	r.mu.RUnlock()
	if ok {
		return inst, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		// Re-check under the group: another caller may have finished
		// between the read above and joining this flight.
		r.mu.RLock()
		inst, ok := r.instances[key]
		r.mu.RUnlock()
		if ok {
			return inst, nil
		}

		created, err := r.factory(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("connector: init %s: %w", key, err)
		}

		r.mu.Lock()
		r.instances[key] = created
		r.mu.Unlock()
		return created, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Get returns the instance for key without creating it.
func (r *Registry[T]) Get(key Key) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[key]
	return inst, ok
}

// Close removes the instance for key, releasing its resources if it
// implements Closer. A later GetOrCreate re-initializes it.
func (r *Registry[T]) Close(key Key) error {
	r.mu.Lock()
	inst, ok := r.instances[key]
	if ok {
		delete(r.instances, key)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if c, isCloser := any(inst).(Closer); isCloser {
		return c.Close()
	}
	return nil
}

// CloseAll removes every instance, closing each in deterministic key
// order. The first close error is returned; closing continues regardless.
func (r *Registry[T]) CloseAll() error {
	r.mu.Lock()
	keys := make([]Key, 0, len(r.instances))
	for k := range r.instances {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	instances := make([]T, len(keys))
	for i, k := range keys {
		instances[i] = r.instances[k]
	}
	r.instances = make(map[Key]T)
	r.mu.Unlock()

	var firstErr error
	for _, inst := range instances {
		if c, ok := any(inst).(Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Keys returns the keys of all live instances.
func (r *Registry[T]) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.instances))
	for k := range r.instances {
		keys = append(keys, k)
	}
	return keys
}
