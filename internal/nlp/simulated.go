package nlp

import (
	"context"
	"regexp"
	"strings"

	"github.com/gabayhq/gabay-backend/internal/simulation"
)

var amountPattern = regexp.MustCompile(`\d+`)

// SimulatedClient classifies text with keyword matching instead of calling
// the NLP service. The rules mirror the demo phrases the simulated
// recognition client produces.
type SimulatedClient struct {
	sim *simulation.Config
}

// NewSimulatedClient creates a simulated NLP client.
func NewSimulatedClient(sim *simulation.Config) *SimulatedClient {
	return &SimulatedClient{sim: sim}
}

// Analyze classifies the text by keywords.
func (c *SimulatedClient) Analyze(ctx context.Context, text string) (Result, error) {
	if err := c.sim.Call(ctx); err != nil {
		return Result{}, err
	}

	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "send money") || strings.Contains(lower, "transfer"):
		recipient := "unknown recipient"
		if strings.Contains(text, "John") {
			recipient = "John"
		}
		amount := "unspecified"
		if m := amountPattern.FindString(text); m != "" {
			amount = m
		}
		return Result{
			Intent: IntentSendMoney,
			Entities: []Entity{
				{Type: "recipient", Value: recipient},
				{Type: "amount", Value: amount},
			},
			Confidence: 0.91,
		}, nil

	case strings.Contains(lower, "pay bill") || strings.Contains(lower, "electricity") || strings.Contains(lower, "utility"):
		billType := "unspecified"
		if strings.Contains(lower, "electricity") {
			billType = "electricity"
		}
		return Result{
			Intent:     IntentPayBill,
			Entities:   []Entity{{Type: "billType", Value: billType}},
			Confidence: 0.88,
		}, nil

	case strings.Contains(lower, "buy load") || strings.Contains(lower, "phone"):
		return Result{
			Intent:     IntentBuyLoad,
			Entities:   []Entity{{Type: "phoneNumber", Value: "unspecified"}},
			Confidence: 0.93,
		}, nil

	case strings.Contains(lower, "balance") || strings.Contains(lower, "how much"):
		return Result{
			Intent:     IntentCheckBalance,
			Entities:   []Entity{},
			Confidence: 0.96,
		}, nil

	default:
		return Result{
			Intent:     IntentUnknown,
			Entities:   []Entity{},
			Confidence: 0.40,
		}, nil
	}
}
