// Package voiceauth verifies user identity from voice samples. This is
// biometric speaker verification, distinct from the TTS voice selection in
// the synthesis package.
package voiceauth

import (
	"context"

	"github.com/gabayhq/gabay-backend/internal/capture"
)

// DefaultPhrase is the text-dependent pass phrase used when the caller does
// not supply one.
const DefaultPhrase = "my voice is my password"

// VerifyThreshold is the minimum confidence for a verification to pass.
const VerifyThreshold = 0.7

// EnrollmentResult reports the outcome of enrolling a voice sample.
type EnrollmentResult struct {
	VoiceID string `json:"voice_id"`
}

// VerificationResult reports a verification attempt against an enrolled
// profile.
type VerificationResult struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
}

// Profile is an enrolled voice biometric template.
type Profile struct {
	VoiceID   string `json:"voice_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"` // active, pending, failed
}

// Client defines the interface for voice biometric providers.
type Client interface {
	// Enroll registers a voice sample for the user. An empty phrase uses
	// DefaultPhrase.
	Enroll(ctx context.Context, userID string, audio capture.Blob, phrase string) (EnrollmentResult, error)

	// Verify scores a sample against an enrolled profile. Confidence below
	// VerifyThreshold yields Verified=false without an error.
	Verify(ctx context.Context, voiceID string, audio capture.Blob, phrase string) (VerificationResult, error)

	// Profiles lists the enrolled profiles for a user.
	Profiles(ctx context.Context, userID string) ([]Profile, error)

	// DeleteProfile removes an enrolled profile.
	DeleteProfile(ctx context.Context, voiceID string) error
}
