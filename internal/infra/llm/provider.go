package llm

import "context"

// LLMProvider is the model-agnostic interface every adapter implements, so the
// pipeline is never coupled to a specific vendor.
type LLMProvider interface {
	// ChatCompletion performs a single non-streaming chat completion.
	// Timeouts are carried by ctx.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
