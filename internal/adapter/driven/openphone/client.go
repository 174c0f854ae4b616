// Package openphone implements the calling-platform REST port.
package openphone

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
	"github.com/rgdservices/opsboard/internal/metrics"
)

const defaultBaseURL = "https://api.openphone.com"

// callPageLimit is one page of calls; the dashboard only shows today.
const callPageLimit = "100"

// Compile-time interface satisfaction check.
var _ driven.OpenPhoneClient = (*Client)(nil)

// Client implements the driven.OpenPhoneClient port. Responses are cached
// with an in-memory ETag-aware transport so the dashboard's five-minute
// polling does not hammer the provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger

	// now is swappable so tests can pin the createdBefore bound.
	now func() time.Time
}

// NewClient creates a Client for the production API.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   30 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		logger:  logger,
		now:     time.Now,
	}
}

// NewClientWithURL creates a Client against an arbitrary base URL.
// This constructor is intended for testing with httptest servers.
func NewClientWithURL(apiKey, baseURL string, logger *slog.Logger) *Client {
	c := NewClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

// ListPhoneNumbers returns the workspace phone numbers, passed through untouched.
func (c *Client) ListPhoneNumbers(ctx context.Context) (*model.ProxyResult, error) {
	return c.get(ctx, "/v1/phone-numbers")
}

// ListCalls returns calls created between q.StartTime and now for the given
// phone number. Participants are repeated as individual query parameters,
// which is how the provider expects them.
func (c *Client) ListCalls(ctx context.Context, q model.CallQuery) (*model.ProxyResult, error) {
	params := url.Values{}
	params.Set("phoneNumberId", q.PhoneNumberID)
	for _, participant := range q.Participants {
		params.Add("participants", participant)
	}
	params.Set("createdAfter", q.StartTime.UTC().Format(time.RFC3339))
	params.Set("createdBefore", c.now().UTC().Format(time.RFC3339))
	params.Set("limit", callPageLimit)

	return c.get(ctx, "/v1/calls?"+params.Encode())
}

func (c *Client) get(ctx context.Context, path string) (*model.ProxyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build calling-platform request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProxyRequestDuration.WithLabelValues("openphone").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("openphone", "network_error").Inc()
		return nil, fmt.Errorf("calling-platform api: %w: %w", driven.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("openphone", "network_error").Inc()
		return nil, fmt.Errorf("read calling-platform response: %w: %w", driven.ErrNetwork, err)
	}

	outcome := "success"
	if resp.StatusCode >= 400 {
		outcome = "error"
		c.logger.Warn("calling-platform api error", "status", resp.StatusCode, "path", path)
	}
	metrics.ProxyRequestsTotal.WithLabelValues("openphone", outcome).Inc()

	return &model.ProxyResult{StatusCode: resp.StatusCode, Body: body}, nil
}
