// Package llm defines the model-agnostic LLM provider abstraction and its
// HTTP adapters (OpenAI, Anthropic, Ollama).
package llm

import "errors"

// ErrEmptyResponse is returned when a provider answers 2xx without any usable text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ChatRequest is the input for a non-streaming chat completion.
// Temperature is always sent, so 0 means deterministic sampling rather than
// "provider default".
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	StopReason string // "stop" | "length" | "end_turn" ...
	Tokens     int    // Total tokens consumed (prompt + completion), when reported.
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "gpt-4o-mini", "claude-3-5-haiku-20241022"
	Provider string // e.g. "openai", "anthropic", "ollama"
}

// UserPrompt wraps a single prompt as a one-message conversation.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}
