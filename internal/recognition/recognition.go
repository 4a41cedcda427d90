package recognition

import (
	"context"
	"errors"

	"github.com/gabayhq/gabay-backend/internal/capture"
)

// FallbackText is spoken back when the service answers with a shape we do not
// recognize. Recognition never hard-fails the voice flow on a malformed
// response; it degrades to this low-confidence result instead.
const FallbackText = "I couldn't understand that. Please try again."

// FallbackConfidence is the confidence attached to FallbackText results.
const FallbackConfidence = 0.1

// ErrRemote indicates the service explicitly returned an error payload.
// Unlike a malformed response, this is surfaced to the caller.
var ErrRemote = errors.New("recognition service returned an error")

// Result represents a speech-to-text result.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-1
}

// Client defines the interface for speech recognition providers.
type Client interface {
	// Recognize converts recorded audio into text. The blob is consumed by
	// this single call.
	Recognize(ctx context.Context, audio capture.Blob) (Result, error)
}
