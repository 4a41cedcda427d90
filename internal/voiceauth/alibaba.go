package voiceauth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabayhq/gabay-backend/internal/capture"
)

const requestTimeout = 10 * time.Second

// AlibabaClient implements Client against the speaker verification endpoints.
// It authenticates with an OAuth client-credentials grant rather than the
// NLS token used by recognition and synthesis.
type AlibabaClient struct {
	endpoint     string // speaker API base URL
	authEndpoint string // OAuth token URL
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// AlibabaConfig holds configuration for the voice biometric client.
type AlibabaConfig struct {
	Endpoint     string
	AuthEndpoint string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// NewAlibabaClient creates a voice biometric client.
func NewAlibabaClient(cfg AlibabaConfig) *AlibabaClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &AlibabaClient{
		endpoint:     cfg.Endpoint,
		authEndpoint: cfg.AuthEndpoint,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
	}
}

// authToken performs the client-credentials exchange.
func (c *AlibabaClient) authToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.authEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("auth endpoint error: %s - %s", resp.Status, string(body))
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("auth endpoint returned empty access token")
	}
	return tr.AccessToken, nil
}

// doJSON posts a JSON body with a bearer token and decodes the response into
// out when it is non-nil.
func (c *AlibabaClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	token, err := c.authToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain auth token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speaker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("speaker API error: %s - %s", resp.Status, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode speaker response: %w", err)
		}
	}
	return nil
}

// Enroll registers a voice sample with the text-dependent model.
func (c *AlibabaClient) Enroll(ctx context.Context, userID string, audio capture.Blob, phrase string) (EnrollmentResult, error) {
	if phrase == "" {
		phrase = DefaultPhrase
	}

	reqBody := map[string]any{
		"userId":      userID,
		"audio":       base64.StdEncoding.EncodeToString(audio.Data),
		"audioFormat": "wav",
		"sampleRate":  16000,
		"phrase":      phrase,
		"modelType":   "text_dependent",
	}

	var apiResp struct {
		VoiceID string `json:"voiceId"`
	}
	if err := c.doJSON(ctx, "POST", "/speaker/enrollment", reqBody, &apiResp); err != nil {
		return EnrollmentResult{}, err
	}
	if apiResp.VoiceID == "" {
		return EnrollmentResult{}, fmt.Errorf("voice enrollment failed: no voice ID returned")
	}

	return EnrollmentResult{VoiceID: apiResp.VoiceID}, nil
}

// Verify scores a sample against an enrolled profile.
func (c *AlibabaClient) Verify(ctx context.Context, voiceID string, audio capture.Blob, phrase string) (VerificationResult, error) {
	if phrase == "" {
		phrase = DefaultPhrase
	}

	reqBody := map[string]any{
		"voiceId":                voiceID,
		"audio":                  base64.StdEncoding.EncodeToString(audio.Data),
		"audioFormat":            "wav",
		"sampleRate":             16000,
		"phrase":                 phrase,
		"minConfidenceThreshold": VerifyThreshold,
	}

	var apiResp struct {
		Confidence float64 `json:"confidence"`
	}
	if err := c.doJSON(ctx, "POST", "/speaker/verify", reqBody, &apiResp); err != nil {
		return VerificationResult{}, err
	}

	return VerificationResult{
		Verified:   apiResp.Confidence >= VerifyThreshold,
		Confidence: apiResp.Confidence,
	}, nil
}

// Profiles lists enrolled profiles for a user.
func (c *AlibabaClient) Profiles(ctx context.Context, userID string) ([]Profile, error) {
	var apiResp struct {
		Profiles []struct {
			VoiceID   string `json:"voiceId"`
			UserID    string `json:"userId"`
			CreatedAt string `json:"createdAt"`
			Status    string `json:"status"`
		} `json:"profiles"`
	}

	path := "/speaker/profiles?userId=" + url.QueryEscape(userID)
	if err := c.doJSON(ctx, "GET", path, nil, &apiResp); err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(apiResp.Profiles))
	for _, p := range apiResp.Profiles {
		status := p.Status
		if status == "" {
			status = "active"
		}
		profiles = append(profiles, Profile{
			VoiceID:   p.VoiceID,
			UserID:    p.UserID,
			CreatedAt: p.CreatedAt,
			Status:    status,
		})
	}
	return profiles, nil
}

// DeleteProfile removes an enrolled profile.
func (c *AlibabaClient) DeleteProfile(ctx context.Context, voiceID string) error {
	return c.doJSON(ctx, "DELETE", "/speaker/profiles/"+url.PathEscape(voiceID), nil, nil)
}
