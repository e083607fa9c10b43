package config

// Provider identifies an LLM provider backend.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
	ProviderXAI        Provider = "xai"
	ProviderZAI        Provider = "zai"
	ProviderOpenRouter Provider = "openrouter"
)

// ValidProviders lists all supported LLM providers, in detection priority order.
var ValidProviders = []Provider{
	ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderXAI, ProviderZAI, ProviderOpenRouter,
}

// ProviderConfig holds the connection details for a single provider.
type ProviderConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// LLMConfig configures every provider this module can route to, plus the
// default provider used when a task descriptor does not override it.
type LLMConfig struct {
	DefaultProvider Provider       `json:"default_provider,omitempty"`
	Anthropic       ProviderConfig `json:"anthropic,omitempty"`
	OpenAI          ProviderConfig `json:"openai,omitempty"`
	Gemini          ProviderConfig `json:"gemini,omitempty"`
	XAI             ProviderConfig `json:"xai,omitempty"`
	ZAI             ProviderConfig `json:"zai,omitempty"`
	OpenRouter      ProviderConfig `json:"openrouter,omitempty"`
}

// Get returns the configuration for a given provider.
func (l *LLMConfig) Get(p Provider) ProviderConfig {
	switch p {
	case ProviderAnthropic:
		return l.Anthropic
	case ProviderOpenAI:
		return l.OpenAI
	case ProviderGemini:
		return l.Gemini
	case ProviderXAI:
		return l.XAI
	case ProviderZAI:
		return l.ZAI
	case ProviderOpenRouter:
		return l.OpenRouter
	default:
		return ProviderConfig{}
	}
}

// DetectProvider picks a provider when none is explicitly configured: the
// configured default if it has a key, otherwise the first provider in
// ValidProviders order with a non-empty API key.
func (l *LLMConfig) DetectProvider() (Provider, ProviderConfig, bool) {
	if l.DefaultProvider != "" {
		if cfg := l.Get(l.DefaultProvider); cfg.APIKey != "" {
			return l.DefaultProvider, cfg, true
		}
	}
	for _, p := range ValidProviders {
		if cfg := l.Get(p); cfg.APIKey != "" {
			return p, cfg, true
		}
	}
	return "", ProviderConfig{}, false
}

func defaultLLMConfig() LLMConfig {
	return LLMConfig{
		Anthropic:  ProviderConfig{Model: "claude-sonnet-4-5-20250514"},
		OpenAI:     ProviderConfig{Model: "gpt-5.1"},
		Gemini:     ProviderConfig{Model: "gemini-3-flash-preview"},
		XAI:        ProviderConfig{Model: "grok-2-latest"},
		ZAI:        ProviderConfig{Model: "glm-4.7", BaseURL: "https://api.z.ai/api/coding/paas/v4"},
		OpenRouter: ProviderConfig{Model: "anthropic/claude-3.5-sonnet"},
	}
}
