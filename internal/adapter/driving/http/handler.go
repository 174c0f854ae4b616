// Package httphandler is the HTTP driving adapter serving the dashboard API:
// the per-provider proxy endpoints, the call webhook receiver, and the
// operator notes.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rgdservices/opsboard/internal/application"
	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

// maxWebhookBody bounds webhook reads; real deliveries are a few KB.
const maxWebhookBody = 1 << 20

const defaultHistoryDays = 14

// Handler is the HTTP driving adapter for the dashboard API.
type Handler struct {
	jobber    driven.JobberClient
	openphone driven.OpenPhoneClient
	monday    driven.MondayClient
	airiq     driven.AirIQClient
	stats     *application.CallStatsService
	notes     driven.NoteStore
	archive   driven.StatsArchive
	tokens    driven.TokenStore
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	jobber driven.JobberClient,
	openphone driven.OpenPhoneClient,
	monday driven.MondayClient,
	airiqClient driven.AirIQClient,
	stats *application.CallStatsService,
	notes driven.NoteStore,
	archive driven.StatsArchive,
	tokens driven.TokenStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		jobber:    jobber,
		openphone: openphone,
		monday:    monday,
		airiq:     airiqClient,
		stats:     stats,
		notes:     notes,
		archive:   archive,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers all API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/jobber", h.JobberProxy)
	mux.HandleFunc("POST /api/openphone", h.OpenPhoneProxy)
	mux.HandleFunc("POST /api/monday", h.MondayProxy)
	mux.HandleFunc("POST /api/airiq", h.AirIQProxy)

	mux.HandleFunc("POST /api/openphone/webhook", h.WebhookIngest)
	mux.HandleFunc("GET /api/openphone/webhook", h.WebhookSnapshot)
	mux.HandleFunc("GET /api/openphone/webhook/history", h.WebhookHistory)

	mux.HandleFunc("GET /api/notes", h.GetNote)
	mux.HandleFunc("PUT /api/notes", h.PutNote)

	mux.HandleFunc("GET /api/jobber/token-status", h.TokenStatus)
	mux.HandleFunc("GET /api/health", h.Health)
}

// JobberProxy forwards a GraphQL query to the field-service API with
// stale-credential recovery. The provider response passes through untouched,
// GraphQL errors included.
func (h *Handler) JobberProxy(w http.ResponseWriter, r *http.Request) {
	var req JobberProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.jobber.Query(r.Context(), req.Query, req.Variables)
	if err != nil {
		h.writeProviderError(w, "jobber", err)
		return
	}
	writeProxy(w, res)
}

// OpenPhoneProxy forwards a call-log request to the calling platform.
// Without a phoneNumberId it lists phone numbers so the browser can discover
// one; with it, it lists calls since startTime.
func (h *Handler) OpenPhoneProxy(w http.ResponseWriter, r *http.Request) {
	var req OpenPhoneProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PhoneNumberID == "" {
		res, err := h.openphone.ListPhoneNumbers(r.Context())
		if err != nil {
			h.writeProviderError(w, "openphone", err)
			return
		}
		writeProxy(w, res)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startTime must be RFC 3339")
		return
	}

	res, err := h.openphone.ListCalls(r.Context(), model.CallQuery{
		StartTime:     start,
		PhoneNumberID: req.PhoneNumberID,
		Participants:  req.Participants,
	})
	if err != nil {
		h.writeProviderError(w, "openphone", err)
		return
	}
	writeProxy(w, res)
}

// MondayProxy forwards a board query to the work-tracking API.
func (h *Handler) MondayProxy(w http.ResponseWriter, r *http.Request) {
	var req MondayProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.monday.Query(r.Context(), req.Query)
	if err != nil {
		h.writeProviderError(w, "monday", err)
		return
	}
	writeProxy(w, res)
}

// AirIQProxy forwards a fleet-telemetry request.
func (h *Handler) AirIQProxy(w http.ResponseWriter, r *http.Request) {
	var req AirIQProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.airiq.Get(r.Context(), req.Endpoint)
	if err != nil {
		if errors.Is(err, driven.ErrInvalidEndpoint) {
			writeError(w, http.StatusBadRequest, "invalid fleet endpoint")
			return
		}
		h.writeProviderError(w, "airiq", err)
		return
	}
	writeProxy(w, res)
}

// WebhookIngest receives call lifecycle events pushed by the calling
// platform. It always acknowledges with 200: an error response would make
// the sender retry deliveries we cannot parse anyway.
func (h *Handler) WebhookIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("reading webhook body failed", "error", err)
		writeJSON(w, http.StatusOK, WebhookAckResponse{Error: "Processing error"})
		return
	}

	h.stats.Ingest(body)
	writeJSON(w, http.StatusOK, WebhookAckResponse{Received: true})
}

// WebhookSnapshot returns the current day's call counters.
func (h *Handler) WebhookSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Snapshot())
}

// WebhookHistory returns archived finished-day totals, newest first.
func (h *Handler) WebhookHistory(w http.ResponseWriter, r *http.Request) {
	days := defaultHistoryDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = parsed
	}

	archived, err := h.archive.ListRecent(r.Context(), days)
	if err != nil {
		h.logger.Error("listing archived call stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]HistoryDayResponse, 0, len(archived))
	for _, day := range archived {
		resp = append(resp, HistoryDayResponse{
			Date:        day.Date,
			TotalCalls:  day.TotalCalls,
			MissedCalls: day.MissedCalls,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNote returns the operator notes as markdown plus sanitized HTML.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context())
	if err != nil {
		h.logger.Error("loading note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// PutNote replaces the operator notes.
func (h *Handler) PutNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.notes.Set(r.Context(), req.Markdown); err != nil {
		h.logger.Error("saving note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	note, err := h.notes.Get(r.Context())
	if err != nil {
		h.logger.Error("reloading note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// TokenStatus tells the render layer whether the access token was replaced
// in memory since startup, so it can show a "persist the new token" banner.
func (h *Handler) TokenStatus(w http.ResponseWriter, _ *http.Request) {
	_, at, rotated := h.tokens.LastRotated()

	resp := TokenStatusResponse{Rotated: rotated}
	if rotated {
		v := at.UTC().Format(time.RFC3339)
		resp.RotatedAt = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health is the liveness endpoint used by the healthcheck binary.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeProviderError maps caller errors onto the dashboard contract: a
// failed refresh chain yields the 401 shape the original board expects,
// transport failures yield 502, everything else 500. Panels render these as
// localized inline errors; one provider failing never affects the others.
func (h *Handler) writeProviderError(w http.ResponseWriter, provider string, err error) {
	h.logger.Error("provider request failed", "provider", provider, "error", err)

	switch {
	case errors.Is(err, driven.ErrAuthRecovery):
		writeJSON(w, http.StatusUnauthorized, RefreshFailedResponse{
			Error:   "Failed to refresh token",
			Message: "Please check your refresh token",
		})
	case errors.Is(err, driven.ErrNetwork):
		writeError(w, http.StatusBadGateway, "provider unreachable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
