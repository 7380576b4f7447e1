// File: internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/config"

	"go.uber.org/zap"
)

// Client is the base HTTP client for the marketplace backend. All requests
// are issued through the gateway transport, which attaches the credential and
// reacts to authorization failures; nothing here touches tokens.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client over the given transport.
func NewClient(cfg *config.Config, transport http.RoundTripper, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.HTTPTimeout,
		},
		logger: logger.Named("APIClient"),
	}
}

// envelope mirrors the backend's response wrapper.
type envelope struct {
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	Data       json.RawMessage    `json:"data,omitempty"`
	Pagination *common.Pagination `json:"pagination,omitempty"`
}

// do issues one request and decodes the data field into out (when non-nil).
// It returns the pagination block when the backend sent one.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*common.Pagination, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.decodeError(resp, method, path)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	// Enveloped and bare payloads both occur; prefer the envelope when present.
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Status != "" {
		// Some success envelopes carry no data block; out keeps its zero value.
		if len(env.Data) == 0 {
			return env.Pagination, nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decoding response data: %w", err)
		}
		return env.Pagination, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return nil, nil
}

func (c *Client) decodeError(resp *http.Response, method, path string) error {
	apiErr := &common.APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
		apiErr = common.NewAPIError(resp.StatusCode, "HTTP_ERROR", http.StatusText(resp.StatusCode))
	}
	c.logger.Warn("Backend returned an error",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("code", apiErr.Code),
	)
	return apiErr
}
