// Package monday implements the work-tracking board GraphQL port.
package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
	"github.com/rgdservices/opsboard/internal/metrics"
)

const defaultAPIURL = "https://api.monday.com/v2"

// Compile-time interface satisfaction check.
var _ driven.MondayClient = (*Client)(nil)

// Client implements the driven.MondayClient port with a static API token.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiToken   string
	logger     *slog.Logger
}

// NewClient creates a Client for the production API.
func NewClient(apiToken string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     defaultAPIURL,
		apiToken:   apiToken,
		logger:     logger,
	}
}

// NewClientWithURL creates a Client against an arbitrary endpoint.
// This constructor is intended for testing with httptest servers.
func NewClientWithURL(apiToken, apiURL string, logger *slog.Logger) *Client {
	c := NewClient(apiToken, logger)
	c.apiURL = apiURL
	return c
}

// Query executes one board query and passes the response through untouched,
// GraphQL errors included.
func (c *Client) Query(ctx context.Context, query string) (*model.ProxyResult, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encode board query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build board request: %w", err)
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProxyRequestDuration.WithLabelValues("monday").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("monday", "network_error").Inc()
		return nil, fmt.Errorf("work-board api: %w: %w", driven.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("monday", "network_error").Inc()
		return nil, fmt.Errorf("read work-board response: %w: %w", driven.ErrNetwork, err)
	}

	outcome := "success"
	if resp.StatusCode >= 400 {
		outcome = "error"
		c.logger.Warn("work-board api error", "status", resp.StatusCode)
	}
	metrics.ProxyRequestsTotal.WithLabelValues("monday", outcome).Inc()

	return &model.ProxyResult{StatusCode: resp.StatusCode, Body: body}, nil
}
