// Package mlservice is the HTTP client for the external forecasting and
// decision service (FastAPI). All calls are synchronous; callers bound them
// with their own context deadlines where the flow requires it.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/vendex_backend/utils"
)

type Client struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
}

func NewClientFromEnv() *Client {
	baseURL := strings.TrimSpace(os.Getenv("ML_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("ML_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(os.Getenv("ML_API_KEY")),
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClient is the test seam; production wiring goes through NewClientFromEnv.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKeyHdr: "X-API-Key",
		http:      httpClient,
	}
}

// postJSON posts payload to path and returns the raw response body. Transport
// errors and non-2xx statuses both come back wrapped as ErrorIntegrationFailure
// so callers can treat the remote service as a single failure domain.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHdr, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", utils.ErrorIntegrationFailure, path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d: %s", utils.ErrorIntegrationFailure, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func postParsed[T any](ctx context.Context, c *Client, path string, payload interface{}) (*T, error) {
	body, err := c.postJSON(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	var parsed T
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s returned malformed body: %v", utils.ErrorIntegrationFailure, path, err)
	}
	return &parsed, nil
}
