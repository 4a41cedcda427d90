package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// AlibabaClient implements Client against the Alibaba Cloud NLP text
// analysis endpoint.
type AlibabaClient struct {
	endpoint        string
	accessKeyID     string
	accessKeySecret string
	language        string
	httpClient      *http.Client
}

// AlibabaConfig holds configuration for the NLP client.
type AlibabaConfig struct {
	Endpoint        string // full text analysis URL
	AccessKeyID     string
	AccessKeySecret string
	Language        string // defaults to "en"
	HTTPClient      *http.Client
}

// NewAlibabaClient creates an NLP client.
func NewAlibabaClient(cfg AlibabaConfig) *AlibabaClient {
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &AlibabaClient{
		endpoint:        cfg.Endpoint,
		accessKeyID:     cfg.AccessKeyID,
		accessKeySecret: cfg.AccessKeySecret,
		language:        language,
		httpClient:      httpClient,
	}
}

// analyzeRequest is the text analysis request body. The domain tag is fixed:
// this service only ever classifies banking commands.
type analyzeRequest struct {
	Text     string   `json:"text"`
	Tasks    []string `json:"tasks"`
	Language string   `json:"language"`
	Domain   string   `json:"domain"`
}

// analyzeResponse tolerates both historically seen schema variants: task
// names `intent_detection`/`intent` and `entity_recognition`/`entities`,
// entity fields `type`/`tag` and `value`/`text`.
type analyzeResponse struct {
	Results []taskResult `json:"results"`
}

type taskResult struct {
	Task string `json:"task"`
	Data struct {
		Intent *struct {
			Name       string   `json:"name"`
			Confidence *float64 `json:"confidence"`
		} `json:"intent"`
		Entities []rawEntity `json:"entities"`
	} `json:"data"`
}

type rawEntity struct {
	Type  string `json:"type"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Analyze posts the text for intent detection and entity recognition.
func (c *AlibabaClient) Analyze(ctx context.Context, text string) (Result, error) {
	reqBody := analyzeRequest{
		Text:     text,
		Tasks:    []string{"intent_detection", "entity_recognition"},
		Language: c.language,
		Domain:   "finance",
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
	httpReq.Header.Set("x-acs-accesskey-id", c.accessKeyID)
	httpReq.Header.Set("x-acs-accesskey-secret", c.accessKeySecret)
	httpReq.Header.Set("x-acs-signature", c.signature())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("NLP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("NLP API error: %s - %s", resp.Status, string(respBody))
	}

	var apiResp analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Result{}, fmt.Errorf("failed to decode NLP response: %w", err)
	}

	return normalize(apiResp), nil
}

// signature builds the request auth parameter. The service accepts direct
// key authentication; the signature is the key id joined with a timestamp
// and nonce.
func (c *AlibabaClient) signature() string {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	nonce := rand.Int63n(1_000_000_000)
	return fmt.Sprintf("%s:%s:%d", c.accessKeyID, timestamp, nonce)
}

// normalize maps the variant task list onto a Result, folding the
// service's snake_case intent names into their canonical forms. Absent or
// empty results resolve to an unknown intent at NoSignalConfidence.
func normalize(resp analyzeResponse) Result {
	if len(resp.Results) == 0 {
		return Result{Intent: IntentUnknown, Entities: []Entity{}, Confidence: NoSignalConfidence}
	}

	result := Result{Intent: IntentUnknown, Entities: []Entity{}, Confidence: NoSignalConfidence}

	for _, task := range resp.Results {
		switch task.Task {
		case "intent_detection", "intent":
			if task.Data.Intent != nil && task.Data.Intent.Name != "" {
				result.Intent = CanonicalIntent(task.Data.Intent.Name)
				result.Confidence = 0.5
				if task.Data.Intent.Confidence != nil {
					result.Confidence = *task.Data.Intent.Confidence
				}
			}
		case "entity_recognition", "entities":
			for _, e := range task.Data.Entities {
				entityType := e.Type
				if entityType == "" {
					entityType = e.Tag
				}
				value := e.Value
				if value == "" {
					value = e.Text
				}
				result.Entities = append(result.Entities, Entity{Type: entityType, Value: value})
			}
		}
	}

	return result
}
