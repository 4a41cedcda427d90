package nls

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gabayhq/gabay-backend/internal/simulation"
)

// SimulatedTokenSource issues locally generated tokens for development.
// Consecutive calls return independently valid, distinct token strings;
// there is no caching.
type SimulatedTokenSource struct {
	sim *simulation.Config
	seq atomic.Uint64
}

// NewSimulatedTokenSource creates a simulated token source.
func NewSimulatedTokenSource(sim *simulation.Config) *SimulatedTokenSource {
	return &SimulatedTokenSource{sim: sim}
}

// Token returns a fresh simulated token.
func (s *SimulatedTokenSource) Token(ctx context.Context) (string, error) {
	if err := s.sim.Call(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("sim-token-%d", s.seq.Add(1)), nil
}
