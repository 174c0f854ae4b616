package openphone_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opadapter "github.com/rgdservices/opsboard/internal/adapter/driven/openphone"
	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

func newTestClient(t *testing.T, handler http.Handler) *opadapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return opadapter.NewClientWithURL("op-api-key", server.URL, slog.Default())
}

func TestListPhoneNumbers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/phone-numbers", r.URL.Path)
		assert.Equal(t, "op-api-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":"PN1"}]}`))
	})

	client := newTestClient(t, handler)
	res, err := client.ListPhoneNumbers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"data":[{"id":"PN1"}]}`, string(res.Body))
}

func TestListCalls_QueryParameters(t *testing.T) {
	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/calls", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "PN1", q.Get("phoneNumberId"))
		assert.Equal(t, []string{"+15550001111", "+15550002222"}, q["participants"])
		assert.Equal(t, "2026-08-31T00:00:00Z", q.Get("createdAfter"))
		assert.NotEmpty(t, q.Get("createdBefore"))
		assert.Equal(t, "100", q.Get("limit"))

		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	client := newTestClient(t, handler)
	res, err := client.ListCalls(context.Background(), model.CallQuery{
		StartTime:     start,
		PhoneNumberID: "PN1",
		Participants:  []string{"+15550001111", "+15550002222"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestListCalls_ErrorStatusPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	})

	client := newTestClient(t, handler)
	res, err := client.ListCalls(context.Background(), model.CallQuery{
		StartTime:     time.Now(),
		PhoneNumberID: "PN1",
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.JSONEq(t, `{"message":"invalid api key"}`, string(res.Body))
}

func TestListCalls_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := opadapter.NewClientWithURL("key", server.URL, slog.Default())
	server.Close()

	_, err := client.ListCalls(context.Background(), model.CallQuery{StartTime: time.Now()})

	assert.ErrorIs(t, err, driven.ErrNetwork)
}
