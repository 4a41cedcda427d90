// Package nls handles token exchange for the Alibaba Cloud speech-interaction
// service family (recognition + synthesis share the same token endpoint).
package nls

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TokenSource provides bearer tokens for NLS API calls.
type TokenSource interface {
	// Token returns a valid NLS token. Implementations may re-fetch on every
	// call; no caching is guaranteed.
	Token(ctx context.Context) (string, error)
}

// TokenClient fetches tokens from the NLS CreateToken endpoint using the
// account access key pair as HTTP basic auth credentials.
type TokenClient struct {
	endpoint        string // NLS base URL, e.g. https://nls.aliyuncs.com
	accessKeyID     string
	accessKeySecret string
	staticToken     string // pre-provisioned token from the console, skips the exchange
	httpClient      *http.Client
}

// TokenConfig holds configuration for the token client.
type TokenConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	StaticToken     string // optional, used verbatim when set
	HTTPClient      *http.Client
}

// NewTokenClient creates a token client for the NLS endpoint.
func NewTokenClient(cfg TokenConfig) *TokenClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &TokenClient{
		endpoint:        cfg.Endpoint,
		accessKeyID:     cfg.AccessKeyID,
		accessKeySecret: cfg.AccessKeySecret,
		staticToken:     cfg.StaticToken,
		httpClient:      httpClient,
	}
}

// tokenResponse represents the CreateToken response envelope.
type tokenResponse struct {
	Token struct {
		ID         string `json:"Id"`
		ExpireTime int64  `json:"ExpireTime"`
	} `json:"Token"`
}

// Token returns an NLS token, fetching one from CreateToken unless a static
// token is configured.
func (c *TokenClient) Token(ctx context.Context) (string, error) {
	if c.staticToken != "" {
		return c.staticToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/CreateToken", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.accessKeyID, c.accessKeySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint error: %s - %s", resp.Status, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.Token.ID == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}

	return tr.Token.ID, nil
}
