package provider

import "time"

// NewOpenRouterAdapter builds an Adapter for OpenRouter's OpenAI-compatible
// multi-provider gateway. SiteURL/SiteName are optional headers OpenRouter
// uses for its public leaderboard attribution; empty strings are fine.
func NewOpenRouterAdapter(apiKey, baseURL, model, siteURL, siteName string, timeout time.Duration) Adapter {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	headers := func(key string) map[string]string {
		h := map[string]string{"Authorization": "Bearer " + key}
		if siteURL != "" {
			h["HTTP-Referer"] = siteURL
		}
		if siteName != "" {
			h["X-Title"] = siteName
		}
		return h
	}
	return newChatCompatibleAdapter("openrouter", apiKey, baseURL+"/chat/completions", model, timeout, headers)
}

// OpenRouterModels lists a handful of popular OpenRouter routes in
// provider/model format, useful as routing.toml override suggestions.
var OpenRouterModels = []string{
	"anthropic/claude-3.5-sonnet",
	"openai/gpt-4o",
	"google/gemini-pro-1.5",
	"meta-llama/llama-3.1-70b-instruct",
	"deepseek/deepseek-chat",
}
