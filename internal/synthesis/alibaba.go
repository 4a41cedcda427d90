package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabayhq/gabay-backend/internal/nls"
)

const requestTimeout = 10 * time.Second

// AlibabaClient implements Client against the Alibaba Cloud NLS TTS endpoint.
type AlibabaClient struct {
	endpoint   string
	appKey     string
	tokens     nls.TokenSource
	mediaDir   string
	httpClient *http.Client
}

// AlibabaConfig holds configuration for the synthesis client.
type AlibabaConfig struct {
	Endpoint   string // full TTS URL
	AppKey     string
	Tokens     nls.TokenSource
	MediaDir   string // directory synthesized files are written to
	HTTPClient *http.Client
}

// NewAlibabaClient creates a synthesis client.
func NewAlibabaClient(cfg AlibabaConfig) *AlibabaClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &AlibabaClient{
		endpoint:   cfg.Endpoint,
		appKey:     cfg.AppKey,
		tokens:     cfg.Tokens,
		mediaDir:   cfg.MediaDir,
		httpClient: httpClient,
	}
}

// ttsRequest is the NLS synthesis request body.
type ttsRequest struct {
	AppKey     string `json:"appkey"`
	Text       string `json:"text"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Voice      string `json:"voice"`
	Volume     int    `json:"volume"`      // 0-100
	SpeechRate int    `json:"speech_rate"` // -500 to 500
	PitchRate  int    `json:"pitch_rate"`  // -500 to 500
}

// Synthesize renders text to mp3 and persists it under the media dir as
// tts-<timestamp>.mp3. Token and synthesis failures both propagate.
func (c *AlibabaClient) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain NLS token: %w", err)
	}

	voice := ResolveVoice(voiceID)

	reqBody := ttsRequest{
		AppKey:     c.appKey,
		Text:       text,
		Format:     "mp3",
		SampleRate: 16000,
		Voice:      voice.ID,
		Volume:     50,
		SpeechRate: 0,
		PitchRate:  0,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-NLS-Token", token)
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("TTS API error: %s - %s", resp.Status, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read audio payload: %w", err)
	}

	path := filepath.Join(c.mediaDir, fmt.Sprintf("tts-%d.mp3", time.Now().UnixMilli()))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to persist synthesized audio: %w", err)
	}

	return path, nil
}
