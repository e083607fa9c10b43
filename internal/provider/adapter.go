// Package provider implements the Provider Adapter layer: one thin client per
// upstream LLM API (Anthropic, OpenAI, Gemini, xAI, Z.AI, OpenRouter), each
// exposed behind a single Adapter interface so the orchestrator never has to
// know which wire format it is talking to.
package provider

import "context"

// Request is a single, provider-agnostic completion request.
type Request struct {
	// SystemPrompt carries the prompt builder's system-level instructions.
	SystemPrompt string

	// UserPrompt carries the task-specific content.
	UserPrompt string

	// Model overrides the adapter's configured default model when non-empty.
	Model string

	// Temperature controls sampling; adapters default it when zero-valued
	// requests don't set it explicitly (see Request.TemperatureOrDefault).
	Temperature float64

	// MaxTokens bounds the completion length; zero means "use the adapter's
	// default".
	MaxTokens int
}

// TemperatureOrDefault returns r.Temperature, or 0.1 if unset. Every adapter
// uses a low, near-deterministic temperature since task outputs are parsed
// as structured JSON.
func (r Request) TemperatureOrDefault() float64 {
	if r.Temperature == 0 {
		return 0.1
	}
	return r.Temperature
}

// MaxTokensOrDefault returns r.MaxTokens, or 8192 if unset.
func (r Request) MaxTokensOrDefault() int {
	if r.MaxTokens == 0 {
		return 8192
	}
	return r.MaxTokens
}

// Response is a single, provider-agnostic completion response.
type Response struct {
	// Text is the raw completion text returned by the provider.
	Text string

	// Model is the model that actually served the request.
	Model string

	// StopReason is the provider's own terminology for why generation
	// stopped (e.g. "stop", "end_turn", "length").
	StopReason string

	Usage Usage
}

// Usage reports token accounting, when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Adapter is implemented by every provider client. Invoke performs exactly
// one attempt (including the adapter's own internal 429 retry loop); the
// orchestrator's own retry schedule sits above this.
type Adapter interface {
	Invoke(ctx context.Context, req Request) (Response, error)
	Name() string
	DefaultModel() string
}
