package handlers

import (
	"net/http"
	"time"
)

// Provider names reported by /health.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Availability reports whether a named provider is configured.
type Availability interface {
	Available(name string) bool
}

// HealthHandler handles GET /health.
type HealthHandler struct {
	providers Availability
	now       func() time.Time
}

// NewHealthHandler reports both providers unavailable when providers is nil.
func NewHealthHandler(providers Availability) *HealthHandler {
	return &HealthHandler{providers: providers, now: time.Now}
}

type healthResponse struct {
	OpenAIAvailable bool    `json:"openai_available"`
	ClaudeAvailable bool    `json:"claude_available"`
	Timestamp       float64 `json:"timestamp"`
}

// Health reports configured provider availability. It does not call the providers.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Timestamp: unixSeconds(h.now())}
	if h.providers != nil {
		resp.OpenAIAvailable = h.providers.Available(ProviderOpenAI)
		resp.ClaudeAvailable = h.providers.Available(ProviderAnthropic)
	}
	writeJSON(w, http.StatusOK, resp)
}
