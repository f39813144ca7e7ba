package modelconn_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edubridge/edubridge/pkg/modelconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check: Connector satisfies Generator.
var _ modelconn.Generator = (*modelconn.Connector)(nil)

func newTestConnector(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *modelconn.Connector) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := modelconn.New(modelconn.Config{
		BaseURL: srv.URL,
		Auth:    modelconn.Auth{Key: "test-key"},
		Model:   "test-model",
	})
	require.NoError(t, err)

	return srv, c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}

	return req
}

func TestGenerateText(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)
		assert.Equal(t, "test-model", req["model"])
		assert.Equal(t, "hi", req["prompt"])
		assert.InDelta(t, float64(modelconn.DefaultMaxTokens), req["max_tokens"], 1e-9)
		assert.InDelta(t, modelconn.DefaultTemperature, req["temperature"], 1e-9)

		writeJSON(t, w, map[string]any{
			"choices": []map[string]any{{"text": "hello"}},
		})
	})

	text, err := c.GenerateText(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestGenerateText_Overrides(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		assert.Equal(t, "other-model", req["model"])
		assert.InDelta(t, 42.0, req["max_tokens"], 1e-9)
		assert.InDelta(t, 0.0, req["temperature"], 1e-9)
		assert.Equal(t, "high", req["reasoning_effort"])

		writeJSON(t, w, map[string]any{
			"choices": []map[string]any{{"text": "ok"}},
		})
	})

	opts := &modelconn.Options{
		Model:       "other-model",
		MaxTokens:   42,
		Temperature: modelconn.Float(0),
		Extra:       map[string]any{"reasoning_effort": "high", "model": "ignored"},
	}

	_, err := c.GenerateText(context.Background(), "hi", opts)
	require.NoError(t, err)
}

func TestGenerateText_EmptyChoices(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"choices": []any{}})
	})

	_, err := c.GenerateText(context.Background(), "hi", nil)
	assert.ErrorContains(t, err, "empty choices")
}

func TestGenerateText_APIError(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(t, w, map[string]any{
			"error": map[string]any{"code": "invalid_api_key", "message": "bad key"},
		})
	})

	_, err := c.GenerateText(context.Background(), "hi", nil)

	var apiErr *modelconn.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.Equal(t, "bad key", apiErr.Message)
}

func TestGenerateText_EmbeddedError(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"error": map[string]any{"type": "overloaded_error", "message": "try later"},
		})
	})

	_, err := c.GenerateText(context.Background(), "hi", nil)

	var apiErr *modelconn.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "overloaded_error", apiErr.Code)
}

func TestGenerateText_TransportError(t *testing.T) {
	srv, c := newTestConnector(t, func(_ http.ResponseWriter, _ *http.Request) {})
	srv.Close()

	_, err := c.GenerateText(context.Background(), "hi", nil)

	var transErr *modelconn.TransportError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "generate", transErr.Op)
}

func TestGenerateText_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(t, w, map[string]any{"choices": []map[string]any{{"text": "late"}}})
	}))
	t.Cleanup(srv.Close)

	c, err := modelconn.New(modelconn.Config{
		BaseURL: srv.URL,
		Auth:    modelconn.Auth{Key: "test-key"},
		Timeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "hi", nil)

	var transErr *modelconn.TransportError
	require.ErrorAs(t, err, &transErr)
	assert.True(t, transErr.Timeout())
}

func TestChatCompletion(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		req := readBody(t, r)
		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 2)

		first, _ := msgs[0].(map[string]any)
		assert.Equal(t, "system", first["role"])
		assert.Equal(t, "Be brief.", first["content"])

		writeJSON(t, w, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hi!"}},
			},
		})
	})

	msgs := []modelconn.Message{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "hello"},
	}

	content, err := c.ChatCompletion(context.Background(), msgs, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi!", content)
}

func TestChatCompletion_NoMessage(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"choices": []map[string]any{{"text": "wrong shape"}}})
	})

	_, err := c.ChatCompletion(context.Background(), []modelconn.Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorContains(t, err, "no message")
}

func TestModels(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)

		writeJSON(t, w, map[string]any{
			"data": []map[string]any{
				{"id": "test-model", "owned_by": "acme"},
				{"id": "other-model"},
			},
		})
	})

	models, err := c.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "test-model", models[0].ID)
	assert.Equal(t, "acme", models[0].OwnedBy)
}

func TestTestConnection(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.True(t, c.TestConnection(context.Background()))
}

func TestTestConnection_HTTPError(t *testing.T) {
	_, c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.False(t, c.TestConnection(context.Background()))
}

func TestTestConnection_Unreachable(t *testing.T) {
	srv, c := newTestConnector(t, func(_ http.ResponseWriter, _ *http.Request) {})
	srv.Close()

	assert.False(t, c.TestConnection(context.Background()))
}
