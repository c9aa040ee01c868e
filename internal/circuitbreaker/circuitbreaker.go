// Package circuitbreaker wraps sony/gobreaker with typed results and a
// sane default policy for external data providers.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("circuitbreaker: open")

// Config controls the breaker policy.
type Config struct {
	Name        string
	MaxRequests uint32        // probes allowed in half-open state
	Interval    time.Duration // counter reset interval while closed
	Timeout     time.Duration // open duration before half-open
	MinRequests uint32        // calls before the failure ratio applies
	FailureRate float64       // ratio that trips the breaker
}

// DefaultConfig returns the policy used for provider calls: trip after
// 60% failures over at least 5 calls, probe again after 30 seconds.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

// Breaker is a typed circuit breaker.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a breaker from the given config.
func New[T any](cfg Config) *Breaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
	}
	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker. While the breaker is open the
// call is rejected with ErrOpen without invoking fn.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrOpen
	}
	return result, err
}

// State returns the current breaker state name.
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}
