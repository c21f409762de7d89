package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewOpenAIProvider(OpenAIConfig{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingAPIKey))
	})

	t.Run("applies defaults", func(t *testing.T) {
		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, DefaultOpenAIBaseURL, p.baseURL)
		assert.Equal(t, ModelMeta{ID: DefaultOpenAIModel, Provider: "openai"}, p.ModelInfo())
		assert.Equal(t, DefaultHTTPTimeout, p.client.Timeout)
	})
}

func TestOpenAIProvider_ChatCompletion(t *testing.T) {
	t.Run("sends bearer auth and zero temperature", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"severity\": 4}"},"finish_reason":"stop"}],"usage":{"total_tokens":42}}`))
		}))
		defer srv.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
		require.NoError(t, err)

		resp, err := p.ChatCompletion(context.Background(), ChatRequest{
			Messages:    UserPrompt("classify"),
			Temperature: 0,
			MaxTokens:   50,
		})
		require.NoError(t, err)
		assert.Equal(t, `{"severity": 4}`, resp.Content)
		assert.Equal(t, "stop", resp.StopReason)
		assert.Equal(t, 42, resp.Tokens)

		assert.Equal(t, DefaultOpenAIModel, got["model"])
		assert.Contains(t, got, "temperature")
		assert.EqualValues(t, 0, got["temperature"])
		assert.EqualValues(t, 50, got["max_tokens"])
	})

	t.Run("api error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
		}))
		defer srv.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "bad", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = p.ChatCompletion(context.Background(), ChatRequest{Messages: UserPrompt("hi")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("non-json failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = p.ChatCompletion(context.Background(), ChatRequest{Messages: UserPrompt("hi")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = p.ChatCompletion(context.Background(), ChatRequest{Messages: UserPrompt("hi")})
		assert.True(t, errors.Is(err, ErrEmptyResponse))
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
		}))
		defer srv.Close()

		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = p.ChatCompletion(ctx, ChatRequest{Messages: UserPrompt("hi")})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOpenAIProvider_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" || r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	good, err := NewOpenAIProvider(OpenAIConfig{APIKey: "good", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, good.HealthCheck(context.Background()))

	bad, err := NewOpenAIProvider(OpenAIConfig{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Error(t, bad.HealthCheck(context.Background()))
}
