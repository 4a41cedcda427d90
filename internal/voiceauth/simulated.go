package voiceauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/simulation"
)

// SimulatedClient keeps enrolled profiles in memory for local development.
// Verification passes for any non-empty sample against a known profile.
type SimulatedClient struct {
	sim *simulation.Config

	mu       sync.Mutex
	seq      int
	profiles map[string]Profile // voiceID -> profile
}

// NewSimulatedClient creates a simulated voice biometric client.
func NewSimulatedClient(sim *simulation.Config) *SimulatedClient {
	return &SimulatedClient{
		sim:      sim,
		profiles: make(map[string]Profile),
	}
}

// Enroll records an in-memory profile.
func (c *SimulatedClient) Enroll(ctx context.Context, userID string, audio capture.Blob, phrase string) (EnrollmentResult, error) {
	if err := c.sim.Call(ctx); err != nil {
		return EnrollmentResult{}, err
	}
	if audio.Size() == 0 {
		return EnrollmentResult{}, fmt.Errorf("voice enrollment failed: empty audio sample")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	voiceID := fmt.Sprintf("sim-voice-%d", c.seq)
	c.profiles[voiceID] = Profile{
		VoiceID:   voiceID,
		UserID:    userID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    "active",
	}
	return EnrollmentResult{VoiceID: voiceID}, nil
}

// Verify passes for known profiles with a non-empty sample.
func (c *SimulatedClient) Verify(ctx context.Context, voiceID string, audio capture.Blob, phrase string) (VerificationResult, error) {
	if err := c.sim.Call(ctx); err != nil {
		return VerificationResult{}, err
	}

	c.mu.Lock()
	_, known := c.profiles[voiceID]
	c.mu.Unlock()

	if !known || audio.Size() == 0 {
		return VerificationResult{Verified: false, Confidence: 0.2}, nil
	}
	return VerificationResult{Verified: true, Confidence: 0.85}, nil
}

// Profiles lists the in-memory profiles for a user.
func (c *SimulatedClient) Profiles(ctx context.Context, userID string) ([]Profile, error) {
	if err := c.sim.Call(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	profiles := make([]Profile, 0)
	for _, p := range c.profiles {
		if p.UserID == userID {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// DeleteProfile removes an in-memory profile.
func (c *SimulatedClient) DeleteProfile(ctx context.Context, voiceID string) error {
	if err := c.sim.Call(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.profiles[voiceID]; !ok {
		return fmt.Errorf("voice profile %s not found", voiceID)
	}
	delete(c.profiles, voiceID)
	return nil
}
