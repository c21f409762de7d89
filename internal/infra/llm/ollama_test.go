// Unit tests for OllamaProvider.
// Uses httptest.NewServer to mock the Ollama HTTP API; no real Ollama needed.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ============================================================================
// ChatCompletion tests
// ============================================================================

func TestOllamaProvider_ChatCompletion_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaChatResponse{ //nolint:errcheck
			Message:    ollamaChatMessage{Role: "assistant", Content: "Hello from Ollama"},
			DoneReason: "stop",
			Done:       true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Content != "Hello from Ollama" {
		t.Errorf("expected 'Hello from Ollama', got %q", resp.Content)
	}
	if resp.StopReason != "stop" {
		t.Errorf("expected StopReason 'stop', got %q", resp.StopReason)
	}
}

func TestOllamaProvider_ChatCompletion_ServerError_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	_, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Error("expected error for 400 response, got nil")
	}
}

// ============================================================================
// HealthCheck tests
// ============================================================================

func TestOllamaProvider_HealthCheck_Healthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"models": []interface{}{}}) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got error: %v", err)
	}
}

func TestOllamaProvider_HealthCheck_Down_ReturnsError(t *testing.T) {
	t.Parallel()

	// Use a server that immediately closes the connection.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hijack and close without responding to simulate down server.
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	srv.Close() // Closed before the health check call.

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected error when server is down, got nil")
	}
}

// ============================================================================
// ModelInfo test
// ============================================================================

func TestOllamaProvider_ModelInfo_ReturnsMetadata(t *testing.T) {
	t.Parallel()

	p := NewOllamaProvider("http://localhost:11434", "llama3.2:3b")
	meta := p.ModelInfo()
	if meta.ID != "llama3.2:3b" {
		t.Errorf("expected model ID 'llama3.2:3b', got %q", meta.ID)
	}
	if meta.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", meta.Provider)
	}
}

// ============================================================================
// buildChatOptions tests
// ============================================================================

func TestBuildChatOptions_WithTemperature(t *testing.T) {
	t.Parallel()

	opts := buildChatOptions(ChatRequest{Temperature: 0.7})
	temp, ok := opts["temperature"]
	if !ok {
		t.Fatal("expected 'temperature' key in opts")
	}
	if temp != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", temp)
	}
}

func TestBuildChatOptions_WithMaxTokens(t *testing.T) {
	t.Parallel()

	opts := buildChatOptions(ChatRequest{MaxTokens: 256})
	predict, ok := opts["num_predict"]
	if !ok {
		t.Error("expected 'num_predict' key in opts")
	}
	if predict != 256 {
		t.Errorf("expected num_predict 256, got %v", predict)
	}
}

func TestBuildChatOptions_ZeroTemperature_IsSent(t *testing.T) {
	t.Parallel()

	opts := buildChatOptions(ChatRequest{})
	temp, ok := opts["temperature"]
	if !ok {
		t.Fatal("zero temperature must still be sent")
	}
	if temp != 0.0 {
		t.Errorf("expected temperature 0, got %v", temp)
	}
	if _, ok := opts["num_predict"]; ok {
		t.Error("num_predict must be omitted when MaxTokens is zero")
	}
}

func TestOllamaProvider_ChatCompletion_EmptyContent_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaChatMessage{Role: "assistant"}, Done: true}) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	_, err := p.ChatCompletion(context.Background(), ChatRequest{Messages: UserPrompt("hi")})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}
