package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillscope/internal/shared/config"
)

func newTestClient(t *testing.T, serverURL string, cfg config.LLMConfig) *OllamaClient {
	t.Helper()
	cfg.Host = serverURL
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 5
	}
	client, err := NewOllamaClientWithHTTPClient(cfg, &http.Client{})
	require.NoError(t, err)
	return client
}

func TestOllamaClient_Generate(t *testing.T) {
	t.Run("returns the model response", func(t *testing.T) {
		var captured generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/generate", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(generateResponse{Response: `{"skills": ["dns"]}`, Done: true})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, config.LLMConfig{JSONMode: true, Temperature: 0.2})
		out, err := client.Generate(context.Background(), "llama3", "extract skills")
		require.NoError(t, err)
		assert.Equal(t, `{"skills": ["dns"]}`, out)

		assert.Equal(t, "llama3", captured.Model)
		assert.Equal(t, "extract skills", captured.Prompt)
		assert.False(t, captured.Stream)
		assert.Equal(t, "json", captured.Format)
		require.NotNil(t, captured.Options)
		assert.InDelta(t, 0.2, captured.Options.Temperature, 1e-9)
	})

	t.Run("omits format and options by default", func(t *testing.T) {
		var captured generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, config.LLMConfig{})
		_, err := client.Generate(context.Background(), "llama3", "hello")
		require.NoError(t, err)
		assert.Empty(t, captured.Format)
		assert.Nil(t, captured.Options)
	})

	t.Run("server error surfaces status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, config.LLMConfig{})
		_, err := client.Generate(context.Background(), "missing", "hello")
		require.Error(t, err)

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
		assert.Equal(t, "model not found", httpErr.Body)
	})

	t.Run("slow model times out", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		client := newTestClient(t, server.URL, config.LLMConfig{})
		client.timeout = 50 * time.Millisecond

		_, err := client.Generate(context.Background(), "llama3", "hello")
		require.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("host required", func(t *testing.T) {
		_, err := NewOllamaClient(config.LLMConfig{})
		assert.Error(t, err)
	})

	t.Run("bare host gets a scheme", func(t *testing.T) {
		client, err := NewOllamaClient(config.LLMConfig{Host: "localhost:11434"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434", client.baseURL)
	})
}
