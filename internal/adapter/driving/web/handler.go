// Package web is the HTML driving adapter: the embedded dashboard assets and
// the operator pages for the field-service OAuth flow.
package web

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Handler serves the operator OAuth pages. The tokens these pages display
// are copied into the environment by hand; nothing here writes to the token
// store, so a botched browser flow cannot poison a running process.
type Handler struct {
	auth   driven.JobberAuth
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(auth driven.JobberAuth, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// callbackData feeds the oauth_callback template.
type callbackData struct {
	AccessToken  string
	RefreshToken string
}

// refreshData feeds the oauth_refresh template.
type refreshData struct {
	AccessToken string
}

// Callback completes the authorization-code exchange and renders both tokens
// for the operator to copy into the environment.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		h.logger.Warn("oauth authorization denied", "error", errCode)
		h.renderError(w, http.StatusBadRequest, "Authorization was denied: "+errCode)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.renderError(w, http.StatusBadRequest, "Missing authorization code.")
		return
	}

	pair, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("authorization code exchange failed", "error", err)
		h.renderError(w, http.StatusBadGateway, "Token exchange failed. Check the server logs and retry the authorization flow.")
		return
	}

	h.render(w, "oauth_callback.html", callbackData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// ManualRefresh runs a refresh grant against the configured refresh
// credential and renders the resulting access token.
func (h *Handler) ManualRefresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.auth.Refresh(r.Context())
	if err != nil {
		h.logger.Error("manual token refresh failed", "error", err)
		h.renderError(w, http.StatusBadGateway, "Token refresh failed. The refresh token may have been revoked; rerun the authorization flow.")
		return
	}

	h.render(w, "oauth_refresh.html", refreshData{AccessToken: access})
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("rendering operator page failed", "template", name, "error", err)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, "oauth_error.html", struct{ Message string }{message}); err != nil {
		h.logger.Error("rendering operator page failed", "template", "oauth_error.html", "error", err)
	}
}
