package provider

import "time"

// NewXAIAdapter builds an Adapter for xAI's OpenAI-compatible Grok API.
func NewXAIAdapter(apiKey, baseURL, model string, timeout time.Duration) Adapter {
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}
	if model == "" {
		model = "grok-2-latest"
	}
	return newChatCompatibleAdapter("xai", apiKey, baseURL+"/chat/completions", model, timeout, nil)
}
