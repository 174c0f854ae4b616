package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeProxy relays a provider response verbatim: same status code, same
// body. Provider payloads are already JSON.
func writeProxy(w http.ResponseWriter, res *model.ProxyResult) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RefreshFailedResponse is returned when the field-service token chain could
// not be recovered. The render layer matches on these exact strings to show
// its re-authorization prompt.
type RefreshFailedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JobberProxyRequest is the JSON body for the field-service proxy endpoint.
type JobberProxyRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// OpenPhoneProxyRequest is the JSON body for the calling-platform proxy
// endpoint. An empty PhoneNumberID requests the phone-number listing.
type OpenPhoneProxyRequest struct {
	StartTime     string   `json:"startTime"`
	PhoneNumberID string   `json:"phoneNumberId"`
	Participants  []string `json:"participants"`
}

// MondayProxyRequest is the JSON body for the work-board proxy endpoint.
type MondayProxyRequest struct {
	Query string `json:"query"`
}

// AirIQProxyRequest is the JSON body for the fleet-telemetry proxy endpoint.
type AirIQProxyRequest struct {
	Endpoint string `json:"endpoint"`
}

// WebhookAckResponse acknowledges a webhook delivery.
type WebhookAckResponse struct {
	Received bool   `json:"received,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HistoryDayResponse is one archived day of call totals.
type HistoryDayResponse struct {
	Date        string `json:"date"`
	TotalCalls  int    `json:"totalCalls"`
	MissedCalls int    `json:"missedCalls"`
}

// NoteRequest is the JSON body for replacing the operator notes.
type NoteRequest struct {
	Markdown string `json:"markdown"`
}

// NoteResponse is the JSON representation of the operator notes.
type NoteResponse struct {
	Markdown  string `json:"markdown"`
	HTML      string `json:"html"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// TokenStatusResponse reports whether the access token was rotated in memory
// since startup.
type TokenStatusResponse struct {
	Rotated   bool    `json:"rotated"`
	RotatedAt *string `json:"rotated_at,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toNoteResponse converts a domain Note to its JSON response representation.
func toNoteResponse(n model.Note) NoteResponse {
	resp := NoteResponse{
		Markdown: n.Markdown,
		HTML:     renderMarkdown(n.Markdown),
	}
	if !n.UpdatedAt.IsZero() {
		resp.UpdatedAt = n.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
