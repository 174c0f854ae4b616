// Package jobber implements the field-service API ports: the GraphQL proxy
// client with stale-credential recovery, and the OAuth token exchange.
package jobber

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

const (
	defaultAPIURL  = "https://api.getjobber.com/api/graphql"
	graphqlVersion = "2023-11-15"

	// expiredTokenMarker appears in HTTP-200 bodies when the provider
	// rejects an expired access token without using a 401 status.
	expiredTokenMarker = "Access token expired"
)

// Compile-time interface satisfaction check.
var _ driven.JobberClient = (*Client)(nil)

// graphqlRequest is the JSON body sent to the provider's GraphQL endpoint.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Client implements the driven.JobberClient port. On a stale-credential
// response it refreshes the access token once, commits it to the store, and
// reissues the identical request once. It never loops and never refreshes
// before an expiry is actually observed: access tokens live for weeks, and
// without durable storage a proactive refresh would only churn tokens the
// operator then has to re-provision.
type Client struct {
	httpClient *http.Client
	auth       driven.JobberAuth
	tokens     driven.TokenStore
	apiURL     string
	logger     *slog.Logger
}

// NewClient creates a Client for the production GraphQL endpoint.
func NewClient(auth driven.JobberAuth, tokens driven.TokenStore, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		auth:       auth,
		tokens:     tokens,
		apiURL:     defaultAPIURL,
		logger:     logger,
	}
}

// NewClientWithURL creates a Client against an arbitrary GraphQL endpoint.
// This constructor is intended for testing with httptest servers.
func NewClientWithURL(auth driven.JobberAuth, tokens driven.TokenStore, apiURL string, logger *slog.Logger) *Client {
	c := NewClient(auth, tokens, logger)
	c.apiURL = apiURL
	return c
}

// Query executes one GraphQL request, recovering from a stale credential
// with at most one refresh-and-retry. Responses pass through untouched:
// GraphQL "errors" arrays are the render layer's concern.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (*model.ProxyResult, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	res, err := c.do(ctx, body, c.tokens.Access())
	if err != nil {
		return nil, fmt.Errorf("calling field-service api: %w: %w", driven.ErrNetwork, err)
	}

	if !staleCredential(res) {
		return res, nil
	}

	c.logger.Info("stale access token detected, refreshing")
	newToken, err := c.auth.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrAuthRecovery, err)
	}
	c.tokens.SetAccess(newToken)

	res, err = c.do(ctx, body, newToken)
	if err != nil {
		return nil, fmt.Errorf("retrying field-service api: %w: %w", driven.ErrNetwork, err)
	}
	return annotateRefreshed(res, newToken), nil
}

func (c *Client) do(ctx context.Context, body []byte, token string) (*model.ProxyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-JOBBER-GRAPHQL-VERSION", graphqlVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProxyRequestDuration.WithLabelValues("jobber").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("jobber", "network_error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("jobber", "network_error").Inc()
		return nil, fmt.Errorf("read graphql response: %w", err)
	}

	outcome := "success"
	if resp.StatusCode >= 400 {
		outcome = "error"
	}
	metrics.ProxyRequestsTotal.WithLabelValues("jobber", outcome).Inc()

	return &model.ProxyResult{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// staleCredential reports whether the provider rejected the access token.
// The provider signals expiry either with a 401 or, inconveniently, with an
// HTTP-200 body carrying an error marker.
func staleCredential(res *model.ProxyResult) bool {
	if res.StatusCode == http.StatusUnauthorized {
		return true
	}
	return res.StatusCode == http.StatusOK && bytes.Contains(res.Body, []byte(expiredTokenMarker))
}

// annotateRefreshed marks a post-refresh response so the render layer can
// tell the operator to persist the new token. Bodies that are not JSON
// objects pass through unmodified.
func annotateRefreshed(res *model.ProxyResult, token string) *model.ProxyResult {
	var payload map[string]any
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return res
	}
	payload["_tokenRefreshed"] = true
	payload["_newToken"] = token

	annotated, err := json.Marshal(payload)
	if err != nil {
		return res
	}
	return &model.ProxyResult{StatusCode: res.StatusCode, Body: annotated}
}
