package monday_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mondayadapter "github.com/rgdservices/opsboard/internal/adapter/driven/monday"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

func TestQuery_SendsTokenAndPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "monday-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["query"], "boards")

		_, _ = w.Write([]byte(`{"data":{"boards":[{"items_page":{"items":[]}}]}}`))
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := mondayadapter.NewClientWithURL("monday-token", server.URL, slog.Default())
	res, err := client.Query(context.Background(), `query { boards(ids: [1]) { items_page { items { name } } } }`)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"data":{"boards":[{"items_page":{"items":[]}}]}}`, string(res.Body))
}

func TestQuery_GraphQLErrorsPassThrough(t *testing.T) {
	body := `{"errors":[{"message":"Board not found"}]}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := mondayadapter.NewClientWithURL("monday-token", server.URL, slog.Default())
	res, err := client.Query(context.Background(), `query { boards(ids: [999]) { name } }`)

	require.NoError(t, err)
	assert.JSONEq(t, body, string(res.Body))
}

func TestQuery_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := mondayadapter.NewClientWithURL("monday-token", server.URL, slog.Default())
	server.Close()

	_, err := client.Query(context.Background(), `query { boards { name } }`)

	assert.ErrorIs(t, err, driven.ErrNetwork)
}
