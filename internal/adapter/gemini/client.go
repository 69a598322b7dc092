// Package gemini implements the ContextGenerator interface against the
// Gemini REST API with Google Search grounding. Transient upstream failures
// are retried here with exponential backoff; everything above this adapter
// sees a single success or failure.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	requestTimeout = 120 * time.Second

	// maxResponseSize bounds the body read so a misbehaving upstream cannot
	// exhaust memory.
	maxResponseSize = 10 * 1024 * 1024

	maxAttempts   = 4
	retryDelay    = time.Second
	retryMaxDelay = 30 * time.Second

	temperature     = 0.3
	maxOutputTokens = 8192
)

// ErrEmptyResponse indicates the API returned no candidate text.
var ErrEmptyResponse = errors.New("generator returned no candidates")

// HTTPError is a non-2xx reply from the Gemini API.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini api returned status %d", e.StatusCode)
}

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Gemini client for the given credential and model.
func NewClient(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: requestTimeout,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Contents         []reqContent     `json:"contents"`
	Tools            []reqTool        `json:"tools,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type reqContent struct {
	Parts []reqPart `json:"parts"`
}

type reqPart struct {
	Text string `json:"text"`
}

type reqTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []reqPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate implements repository.ContextGenerator. It returns the complete
// raw text of the first candidate; structured recovery happens upstream.
func (c *Client) Generate(ctx context.Context, validatedURL string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []reqContent{{Parts: []reqPart{{Text: analysisPrompt(validatedURL)}}}},
		Tools:    []reqTool{{}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			MaxOutputTokens:  maxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	return retry.DoWithData(
		func() (string, error) {
			return c.doGenerate(ctx, endpoint, body)
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(retryDelay),
		retry.MaxDelay(retryMaxDelay),
		retry.MaxJitter(retryDelay/2),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("retrying generator request", "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) doGenerate(ctx context.Context, endpoint string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// isRetryableError returns true for transient failures. 4xx replies other
// than 429 are permanent, as is an empty candidate list.
func isRetryableError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}
	// Network errors and timeouts are retryable.
	return true
}
