package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/nls"
)

// requestTimeout bounds every recognition call.
const requestTimeout = 10 * time.Second

// AlibabaClient implements Client against the Alibaba Cloud NLS short-form
// recognition endpoint.
type AlibabaClient struct {
	endpoint   string
	appKey     string
	tokens     nls.TokenSource
	httpClient *http.Client
}

// AlibabaConfig holds configuration for the recognition client.
type AlibabaConfig struct {
	Endpoint   string // full recognize URL, e.g. https://nls.aliyuncs.com/recognize
	AppKey     string
	Tokens     nls.TokenSource
	HTTPClient *http.Client
}

// NewAlibabaClient creates a recognition client.
func NewAlibabaClient(cfg AlibabaConfig) *AlibabaClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &AlibabaClient{
		endpoint:   cfg.Endpoint,
		appKey:     cfg.AppKey,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
	}
}

// recognizeRequest is the NLS recognition request body.
type recognizeRequest struct {
	AppKey                         string `json:"appkey"`
	Format                         string `json:"format"`
	SampleRate                     int    `json:"sample_rate"`
	EnablePunctuationPrediction    bool   `json:"enable_punctuation_prediction"`
	EnableInverseTextNormalization bool   `json:"enable_inverse_text_normalization"`
	Audio                          string `json:"audio"` // base64 payload
}

// recognizeResponse covers the response shapes the service has been observed
// to return. It is decoded once and mapped per variant; exactly one of the
// branches is expected to be populated.
type recognizeResponse struct {
	Result     string   `json:"result"`
	Confidence *float64 `json:"confidence"`

	FlashResult *struct {
		Sentences []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"sentences"`
	} `json:"flash_result"`

	Error string `json:"error"`
}

// Recognize sends audio to NLS and normalizes the response.
func (c *AlibabaClient) Recognize(ctx context.Context, audio capture.Blob) (Result, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to obtain NLS token: %w", err)
	}

	reqBody := recognizeRequest{
		AppKey:                         c.appKey,
		Format:                         "wav",
		SampleRate:                     16000,
		EnablePunctuationPrediction:    true,
		EnableInverseTextNormalization: true,
		Audio:                          base64.StdEncoding.EncodeToString(audio.Data),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-NLS-Token", token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("recognition API error: %s - %s", resp.Status, string(respBody))
	}

	var apiResp recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Result{}, fmt.Errorf("failed to decode recognition response: %w", err)
	}

	return normalize(apiResp)
}

// normalize maps the decoded response variants onto a Result.
func normalize(resp recognizeResponse) (Result, error) {
	switch {
	case resp.Result != "":
		confidence := 0.9
		if resp.Confidence != nil {
			confidence = *resp.Confidence
		}
		return Result{Text: resp.Result, Confidence: confidence}, nil

	case resp.FlashResult != nil && len(resp.FlashResult.Sentences) > 0:
		first := resp.FlashResult.Sentences[0]
		return Result{Text: first.Text, Confidence: first.Confidence}, nil

	case resp.Error != "":
		return Result{}, fmt.Errorf("%w: %s", ErrRemote, resp.Error)

	default:
		// Unknown shape with no explicit error: degrade instead of failing.
		return Result{Text: FallbackText, Confidence: FallbackConfidence}, nil
	}
}
