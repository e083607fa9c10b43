package provider

import (
	"fmt"
	"time"

	"jobcore/internal/config"
)

// NewAdapter builds the Adapter for the given provider from its resolved
// ProviderConfig. Returns an error if the provider name is not recognized;
// a missing API key is not an error here (adapters fail at Invoke time so
// config validation stays centralized in config.Config.Validate).
func NewAdapter(p config.Provider, cfg config.ProviderConfig, timeout time.Duration) (Adapter, error) {
	switch p {
	case config.ProviderAnthropic:
		return NewAnthropicAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, timeout), nil
	case config.ProviderOpenAI:
		return NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, timeout), nil
	case config.ProviderGemini:
		return NewGeminiAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, timeout), nil
	case config.ProviderXAI:
		return NewXAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, timeout), nil
	case config.ProviderZAI:
		return NewZAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, timeout), nil
	case config.ProviderOpenRouter:
		return NewOpenRouterAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, "", "", timeout), nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", p)
	}
}

// Registry resolves Adapters for every configured provider on demand and
// caches them, so the orchestrator can ask for "whatever anthropic is" once
// per process instead of re-parsing config.LLMConfig per call.
type Registry struct {
	llm      config.LLMConfig
	timeout  time.Duration
	adapters map[config.Provider]Adapter
}

// NewRegistry builds a Registry over a resolved LLMConfig.
func NewRegistry(llm config.LLMConfig, timeout time.Duration) *Registry {
	return &Registry{
		llm:      llm,
		timeout:  timeout,
		adapters: make(map[config.Provider]Adapter),
	}
}

// Adapter returns the cached or newly-built Adapter for p.
func (r *Registry) Adapter(p config.Provider) (Adapter, error) {
	if a, ok := r.adapters[p]; ok {
		return a, nil
	}
	a, err := NewAdapter(p, r.llm.Get(p), r.timeout)
	if err != nil {
		return nil, err
	}
	r.adapters[p] = a
	return a, nil
}

// Default returns the Adapter for whichever provider config.LLMConfig.DetectProvider
// selects, or an error if no provider has a configured API key.
func (r *Registry) Default() (Adapter, error) {
	p, _, ok := r.llm.DetectProvider()
	if !ok {
		return nil, fmt.Errorf("provider: no provider configured with an API key")
	}
	return r.Adapter(p)
}
