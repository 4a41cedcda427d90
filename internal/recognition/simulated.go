package recognition

import (
	"context"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/simulation"
)

// cannedResults are the recognition results the simulated client cycles
// through, one per supported banking command.
var cannedResults = []Result{
	{Text: "Send money to John", Confidence: 0.92},
	{Text: "Pay my electricity bill", Confidence: 0.89},
	{Text: "Buy load for my phone", Confidence: 0.94},
	{Text: "What's my current balance", Confidence: 0.97},
}

// SimulatedClient returns canned recognition results without touching the
// network. Used when real API calls are disabled.
type SimulatedClient struct {
	sim *simulation.Config
}

// NewSimulatedClient creates a simulated recognition client.
func NewSimulatedClient(sim *simulation.Config) *SimulatedClient {
	return &SimulatedClient{sim: sim}
}

// Recognize ignores the audio and returns one of the canned results.
func (c *SimulatedClient) Recognize(ctx context.Context, _ capture.Blob) (Result, error) {
	if err := c.sim.Call(ctx); err != nil {
		return Result{}, err
	}
	return cannedResults[c.sim.Intn(len(cannedResults))], nil
}
