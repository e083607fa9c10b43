package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobcore/internal/logging"
)

// chatCompatibleAdapter implements the shared OpenAI-compatible chat
// completions wire format used by OpenAI, xAI, Z.AI, and OpenRouter. Each of
// those providers gets a thin named wrapper (see openai.go, xai.go, zai.go,
// openrouter.go) that only supplies its endpoint, headers, and name.
type chatCompatibleAdapter struct {
	name       string
	apiKey     string
	baseURL    string // including e.g. "/chat/completions"
	model      string
	httpClient *http.Client
	headers    func(apiKey string) map[string]string
}

func newChatCompatibleAdapter(name, apiKey, baseURL, model string, timeout time.Duration, headers func(string) map[string]string) *chatCompatibleAdapter {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	if headers == nil {
		headers = func(key string) map[string]string {
			return map[string]string{"Authorization": "Bearer " + key}
		}
	}
	return &chatCompatibleAdapter{
		name:       name,
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
	}
}

func (c *chatCompatibleAdapter) Name() string         { return c.name }
func (c *chatCompatibleAdapter) DefaultModel() string { return c.model }

func (c *chatCompatibleAdapter) Invoke(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("%s: API key not configured", c.name)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokensOrDefault(),
		Temperature: req.TemperatureOrDefault(),
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(backoffSeconds(attempt)) * time.Second)
		}

		resp, err := c.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			if isRateLimitError(err.Error()) {
				continue
			}
			return Response{}, err
		}
		return resp, nil
	}

	return Response{}, fmt.Errorf("%s: max retries exceeded: %w", c.name, lastErr)
}

func (c *chatCompatibleAdapter) doRequest(ctx context.Context, body chatCompletionRequest) (Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to marshal request: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to create request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers(c.apiKey) {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to read response: %w", c.name, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, fmt.Errorf("%s: rate limit exceeded (429)", c.name)
	}
	if resp.StatusCode != http.StatusOK {
		logging.ProviderError("%s: API returned status %d: %s", c.name, resp.StatusCode, string(respBody))
		return Response{}, fmt.Errorf("%s: API request failed with status %d", c.name, resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("%s: failed to parse response: %w", c.name, err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("%s: API error: %s", c.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("%s: no completion returned", c.name)
	}

	choice := parsed.Choices[0]
	return Response{
		Text:       strings.TrimSpace(choice.Message.Content),
		Model:      parsed.Model,
		StopReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}
