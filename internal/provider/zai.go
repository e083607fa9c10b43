package provider

import "time"

// NewZAIAdapter builds an Adapter for Z.AI's OpenAI-compatible coding API,
// the teacher's own default provider.
func NewZAIAdapter(apiKey, baseURL, model string, timeout time.Duration) Adapter {
	if baseURL == "" {
		baseURL = "https://api.z.ai/api/coding/paas/v4"
	}
	if model == "" {
		model = "glm-4.7"
	}
	return newChatCompatibleAdapter("zai", apiKey, baseURL+"/chat/completions", model, timeout, nil)
}
