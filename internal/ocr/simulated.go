package ocr

import (
	"context"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/simulation"
)

// Canned extractions keyed by image size, so demos can exercise the three
// document kinds the app reads: payment QR codes, bills, and receipts.
var (
	simQRResult = Result{
		Text:       "GCash Payment QR\nUser: John Doe\nMobile: 09171234567",
		Confidence: 0.95,
	}
	simBillResult = Result{
		Text:       "Meralco Electricity Bill\nAccount No: 1234567890\nAmount Due: PHP 1,520.75\nDue Date: 07/15/2025",
		Confidence: 0.92,
	}
	simReceiptResult = Result{
		Text:       "GCash Receipt\nTransaction ID: GC12345678\nDate: 06/30/2025\nType: Send Money\nRecipient: Maria Santos\nAmount: PHP 500.00\nFee: PHP 0.00\nTotal: PHP 500.00\nStatus: Success",
		Confidence: 0.88,
	}
)

// SimulatedClient returns canned extractions without calling the OCR
// service. Smaller images simulate QR codes, medium ones bills, larger ones
// receipts.
type SimulatedClient struct {
	sim *simulation.Config
}

// NewSimulatedClient creates a simulated OCR client.
func NewSimulatedClient(sim *simulation.Config) *SimulatedClient {
	return &SimulatedClient{sim: sim}
}

// ExtractText picks a canned result by image size.
func (c *SimulatedClient) ExtractText(ctx context.Context, image capture.Blob) (Result, error) {
	if err := c.sim.Call(ctx); err != nil {
		return Result{}, err
	}

	switch {
	case image.Size() < 1000:
		return simQRResult, nil
	case image.Size() < 10000:
		return simBillResult, nil
	default:
		return simReceiptResult, nil
	}
}
