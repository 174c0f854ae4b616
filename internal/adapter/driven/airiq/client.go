// Package airiq implements the fleet-telemetry REST port.
package airiq

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
	"github.com/rgdservices/opsboard/internal/metrics"
)

const defaultBaseURL = "https://api.airiqfleet.com"

// Compile-time interface satisfaction check.
var _ driven.AirIQClient = (*Client)(nil)

// Client implements the driven.AirIQClient port with HTTP basic auth.
// Vehicle positions change slowly relative to the board's refresh rate, so
// responses go through the same in-memory caching transport as the other
// GET-based providers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     *slog.Logger
}

// NewClient creates a Client for the production API.
func NewClient(username, password string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   30 * time.Second,
		},
		baseURL:  defaultBaseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// NewClientWithURL creates a Client against an arbitrary base URL.
// This constructor is intended for testing with httptest servers.
func NewClientWithURL(username, password, baseURL string, logger *slog.Logger) *Client {
	c := NewClient(username, password, logger)
	c.baseURL = baseURL
	return c
}

// Get issues an authenticated GET against the given API path and passes the
// response through untouched.
func (c *Client) Get(ctx context.Context, endpoint string) (*model.ProxyResult, error) {
	if !strings.HasPrefix(endpoint, "/") || strings.Contains(endpoint, "//") {
		return nil, fmt.Errorf("%w: %q", driven.ErrInvalidEndpoint, endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build fleet request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProxyRequestDuration.WithLabelValues("airiq").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("airiq", "network_error").Inc()
		return nil, fmt.Errorf("fleet api: %w: %w", driven.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("airiq", "network_error").Inc()
		return nil, fmt.Errorf("read fleet response: %w: %w", driven.ErrNetwork, err)
	}

	outcome := "success"
	if resp.StatusCode >= 400 {
		outcome = "error"
		c.logger.Warn("fleet api error", "status", resp.StatusCode, "endpoint", endpoint)
	}
	metrics.ProxyRequestsTotal.WithLabelValues("airiq", outcome).Inc()

	return &model.ProxyResult{StatusCode: resp.StatusCode, Body: body}, nil
}
