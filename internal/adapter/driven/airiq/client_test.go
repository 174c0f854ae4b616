package airiq_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	airiqadapter "github.com/rgdservices/opsboard/internal/adapter/driven/airiq"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

func TestGet_SendsBasicAuth(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "fleet-user", user)
		assert.Equal(t, "fleet-pass", pass)
		assert.Equal(t, "/v1/vehicles", r.URL.Path)

		_, _ = w.Write([]byte(`{"vehicles":[{"id":"truck-1","lat":43.65,"lon":-79.38}]}`))
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := airiqadapter.NewClientWithURL("fleet-user", "fleet-pass", server.URL, slog.Default())
	res, err := client.Get(context.Background(), "/v1/vehicles")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"vehicles":[{"id":"truck-1","lat":43.65,"lon":-79.38}]}`, string(res.Body))
}

func TestGet_RejectsNonAPIPaths(t *testing.T) {
	client := airiqadapter.NewClientWithURL("u", "p", "http://example.invalid", slog.Default())

	for _, endpoint := range []string{"", "v1/vehicles", "//evil.example.com/steal", "http://evil.example.com"} {
		_, err := client.Get(context.Background(), endpoint)
		assert.ErrorIs(t, err, driven.ErrInvalidEndpoint, "endpoint %q", endpoint)
	}
}

func TestGet_ErrorStatusPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad credentials"}`))
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := airiqadapter.NewClientWithURL("u", "p", server.URL, slog.Default())
	res, err := client.Get(context.Background(), "/v1/vehicles")

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
