package jobber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
	"github.com/rgdservices/opsboard/internal/metrics"
)

const defaultTokenURL = "https://api.getjobber.com/api/oauth/token"

// Compile-time interface satisfaction check.
var _ driven.JobberAuth = (*OAuth)(nil)

// OAuth implements the driven.JobberAuth port against the provider's token
// endpoint. Both grants are pure exchanges: the TokenStore is never touched
// here; committing a new access token is the caller's decision.
type OAuth struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
	redirectURI  string
	logger       *slog.Logger
}

// NewOAuth creates an OAuth client for the production token endpoint.
func NewOAuth(clientID, clientSecret, refreshToken, redirectURI string, logger *slog.Logger) *OAuth {
	return &OAuth{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		tokenURL:     defaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		redirectURI:  redirectURI,
		logger:       logger,
	}
}

// NewOAuthWithURL creates an OAuth client against an arbitrary token
// endpoint. This constructor is intended for testing with httptest servers.
func NewOAuthWithURL(tokenURL, clientID, clientSecret, refreshToken, redirectURI string, logger *slog.Logger) *OAuth {
	o := NewOAuth(clientID, clientSecret, refreshToken, redirectURI, logger)
	o.tokenURL = tokenURL
	return o
}

// tokenResponse is the provider's token endpoint response. Fields beyond the
// tokens are ignored; error responses come back as arbitrary JSON and are
// carried raw inside RefreshError.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges the configured refresh credential for a new access
// token. The provider may also return a rotated refresh token; it is
// discarded here, since this system has nowhere durable to put it.
func (o *OAuth) Refresh(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {o.refreshToken},
		"client_id":     {o.clientID},
		"client_secret": {o.clientSecret},
	}

	o.logger.Info("refreshing field-service access token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := o.roundTrip(req)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", &driven.RefreshError{Err: err}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		o.logger.Error("token refresh rejected by provider", "response", string(body))
		return "", &driven.RefreshError{Payload: body, Err: err}
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	o.logger.Info("access token refreshed")
	return tok.AccessToken, nil
}

// Exchange performs the authorization_code grant used by the OAuth callback
// for first-time provisioning. The returned refresh token is shown to the
// operator, never stored.
func (o *OAuth) Exchange(ctx context.Context, code string) (model.TokenPair, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     o.clientID,
		"client_secret": o.clientSecret,
		"code":          code,
		"grant_type":    "authorization_code",
		"redirect_uri":  o.redirectURI,
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("encode exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(string(payload)))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := o.roundTrip(req)
	if err != nil {
		return model.TokenPair{}, &driven.RefreshError{Err: err}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return model.TokenPair{}, &driven.RefreshError{Payload: body, Err: err}
	}

	return model.TokenPair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

func (o *OAuth) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token endpoint response: %w", err)
	}
	return body, nil
}
