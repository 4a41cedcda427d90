// Package simulation provides the shared failure-injection gate used by the
// simulated service clients. It exists purely for local development and demos:
// every simulated call waits a fixed delay, then fails with a configurable
// probability so flaky-network handling can be exercised without a backend.
package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrSimulatedFailure is returned when the random failure gate trips.
var ErrSimulatedFailure = errors.New("simulated API failure")

// Config controls simulated call behavior. One Config is shared by all
// simulated clients, and handlers call them concurrently, so access to the
// random source is serialized through mu.
type Config struct {
	Delay       time.Duration // fixed processing delay per call
	SuccessRate float64       // probability a call succeeds (0-1)

	mu  sync.Mutex
	rng *rand.Rand
}

// NewConfig creates a simulation config with its own random source.
func NewConfig(delay time.Duration, successRate float64) *Config {
	return &Config{
		Delay:       delay,
		SuccessRate: successRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewDeterministicConfig creates a config with a fixed seed for tests.
func NewDeterministicConfig(delay time.Duration, successRate float64, seed int64) *Config {
	return &Config{
		Delay:       delay,
		SuccessRate: successRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Call waits the configured delay and then either succeeds or returns
// ErrSimulatedFailure according to the success rate. The delay respects
// context cancellation.
func (c *Config) Call(ctx context.Context) error {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.mu.Lock()
	roll := c.rng.Float64()
	c.mu.Unlock()
	if roll > c.SuccessRate {
		return ErrSimulatedFailure
	}
	return nil
}

// Intn returns a random int in [0, n) from the config's source. Simulated
// clients use it to vary canned responses without each holding a second,
// unsynchronized source.
func (c *Config) Intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}
