package synthesis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabayhq/gabay-backend/internal/simulation"
)

// SimulatedClient writes a placeholder audio file instead of calling the TTS
// service, so the rest of the pipeline can treat the artifact path the same
// way in both modes.
type SimulatedClient struct {
	sim      *simulation.Config
	mediaDir string
}

// NewSimulatedClient creates a simulated synthesis client.
func NewSimulatedClient(sim *simulation.Config, mediaDir string) *SimulatedClient {
	return &SimulatedClient{sim: sim, mediaDir: mediaDir}
}

// Synthesize persists a stub file named like the real artifact and returns
// its path.
func (c *SimulatedClient) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	if err := c.sim.Call(ctx); err != nil {
		return "", err
	}

	voice := ResolveVoice(voiceID)
	path := filepath.Join(c.mediaDir, fmt.Sprintf("tts-%d.mp3", time.Now().UnixMilli()))

	stub := fmt.Sprintf("simulated %s audio (%s): %s", voice.LanguageCode(), voice.ID, text)
	if err := os.WriteFile(path, []byte(stub), 0o644); err != nil {
		return "", fmt.Errorf("failed to persist simulated audio: %w", err)
	}

	return path, nil
}
