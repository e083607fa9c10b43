package provider

import "time"

// NewOpenAIAdapter builds an Adapter for the OpenAI chat completions API.
func NewOpenAIAdapter(apiKey, baseURL, model string, timeout time.Duration) Adapter {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-5.1"
	}
	return newChatCompatibleAdapter("openai", apiKey, baseURL+"/chat/completions", model, timeout, nil)
}
