// Package ocr extracts text from document and receipt images.
package ocr

import (
	"context"

	"github.com/gabayhq/gabay-backend/internal/capture"
)

// FallbackText is returned when the service response carries no extractable
// text in any known shape.
const FallbackText = "No text could be extracted from this image."

// FallbackConfidence accompanies FallbackText.
const FallbackConfidence = 0.1

// Result is a normalized OCR extraction.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Client defines the interface for OCR providers.
type Client interface {
	// ExtractText reads the text out of an image blob.
	ExtractText(ctx context.Context, image capture.Blob) (Result, error)
}
