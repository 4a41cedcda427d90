package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gabayhq/gabay-backend/internal/capture"
)

const requestTimeout = 10 * time.Second

// minBlockConfidence filters low-quality text blocks out of structured
// results.
const minBlockConfidence = 0.6

// AlibabaClient implements Client against the Alibaba Cloud general OCR
// endpoint.
type AlibabaClient struct {
	endpoint        string
	accessKeyID     string
	accessKeySecret string
	httpClient      *http.Client
}

// AlibabaConfig holds configuration for the OCR client.
type AlibabaConfig struct {
	Endpoint        string // full general OCR URL
	AccessKeyID     string
	AccessKeySecret string
	HTTPClient      *http.Client
}

// NewAlibabaClient creates an OCR client.
func NewAlibabaClient(cfg AlibabaConfig) *AlibabaClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &AlibabaClient{
		endpoint:        cfg.Endpoint,
		accessKeyID:     cfg.AccessKeyID,
		accessKeySecret: cfg.AccessKeySecret,
		httpClient:      httpClient,
	}
}

// extractRequest is the OCR request body.
type extractRequest struct {
	Image     string `json:"image"` // base64 payload
	Configure struct {
		Language      string  `json:"language"`
		MinConfidence float64 `json:"min_confidence"`
		OutputFormat  string  `json:"output_format"`
	} `json:"configure"`
}

// extractResponse covers the observed response shapes: flat content, a
// structured block list, or a plain text field.
type extractResponse struct {
	Content    string   `json:"content"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`

	Blocks []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"blocks"`
}

// ExtractText sends the image for recognition and normalizes the response.
func (c *AlibabaClient) ExtractText(ctx context.Context, image capture.Blob) (Result, error) {
	var reqBody extractRequest
	reqBody.Image = base64.StdEncoding.EncodeToString(image.Data)
	reqBody.Configure.Language = "auto"
	reqBody.Configure.MinConfidence = minBlockConfidence
	reqBody.Configure.OutputFormat = "structured"

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
	timestamp := time.Now().UTC().Format(time.RFC3339)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-acs-accesskey-id", c.accessKeyID)
	httpReq.Header.Set("x-acs-accesskey-secret", c.accessKeySecret)
	httpReq.Header.Set("x-acs-signature", fmt.Sprintf("%s:%s", c.accessKeyID, timestamp))
	httpReq.Header.Set("x-acs-timestamp", timestamp)
	httpReq.Header.Set("x-acs-nonce", fmt.Sprintf("%d", rand.Int63n(1_000_000_000)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("OCR API error: %s - %s", resp.Status, string(respBody))
	}

	var apiResp extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Result{}, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	return normalize(apiResp), nil
}

// normalize maps the decoded response variants onto a Result.
func normalize(resp extractResponse) Result {
	switch {
	case resp.Content != "":
		confidence := 0.8
		if resp.Confidence != nil {
			confidence = *resp.Confidence
		}
		return Result{Text: resp.Content, Confidence: confidence}

	case len(resp.Blocks) > 0:
		var kept []string
		var sum float64
		for _, b := range resp.Blocks {
			sum += b.Confidence
			if b.Text != "" && b.Confidence > minBlockConfidence {
				kept = append(kept, b.Text)
			}
		}
		// The mean runs over every block, including any filtered out of the
		// joined text.
		return Result{
			Text:       strings.Join(kept, "\n"),
			Confidence: sum / float64(len(resp.Blocks)),
		}

	case resp.Text != "":
		confidence := 0.8
		if resp.Confidence != nil {
			confidence = *resp.Confidence
		}
		return Result{Text: resp.Text, Confidence: confidence}

	default:
		return Result{Text: FallbackText, Confidence: FallbackConfidence}
	}
}
