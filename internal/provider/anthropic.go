package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobcore/internal/logging"
)

// AnthropicAdapter implements Adapter for the Anthropic Messages API.
type AnthropicAdapter struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	mu          sync.Mutex
	lastRequest time.Time
}

// NewAnthropicAdapter builds an adapter from a resolved API key, base URL,
// and default model.
func NewAnthropicAdapter(apiKey, baseURL, model string, timeout time.Duration) *AnthropicAdapter {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	if model == "" {
		model = "claude-sonnet-4-5-20250514"
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &AnthropicAdapter{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *AnthropicAdapter) Name() string         { return "anthropic" }
func (a *AnthropicAdapter) DefaultModel() string { return a.model }

// Invoke sends one completion request, retrying internally on 429s.
func (a *AnthropicAdapter) Invoke(ctx context.Context, req Request) (Response, error) {
	if a.apiKey == "" {
		return Response{}, fmt.Errorf("anthropic: API key not configured")
	}

	model := req.Model
	if model == "" {
		model = a.model
	}

	a.mu.Lock()
	elapsed := time.Since(a.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	a.lastRequest = time.Now()
	a.mu.Unlock()

	body := anthropicRequest{
		Model:       model,
		MaxTokens:   req.MaxTokensOrDefault(),
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		Temperature: req.TemperatureOrDefault(),
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(backoffSeconds(attempt)) * time.Second)
		}

		resp, err := a.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			if isRateLimitError(err.Error()) {
				continue
			}
			return Response{}, err
		}
		return resp, nil
	}

	return Response{}, fmt.Errorf("anthropic: max retries exceeded: %w", lastErr)
}

func (a *AnthropicAdapter) doRequest(ctx context.Context, body anthropicRequest) (Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, fmt.Errorf("anthropic: rate limit exceeded (429)")
	}
	if resp.StatusCode != http.StatusOK {
		logging.ProviderError("anthropic: API returned status %d: %s", resp.StatusCode, string(respBody))
		return Response{}, fmt.Errorf("anthropic: API request failed with status %d", resp.StatusCode)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("anthropic: API error: %s", parsed.Error.Message)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return Response{
		Text:       strings.TrimSpace(text.String()),
		Model:      parsed.Model,
		StopReason: parsed.StopReason,
		Usage: Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}
