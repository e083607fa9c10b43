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

// GeminiAdapter implements Adapter for the Gemini generateContent REST API.
type GeminiAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGeminiAdapter builds a text-completion adapter for Gemini. Image/video
// generation go through GeminiImageAdapter/GeminiVideoAdapter in
// gemini_media.go instead, which use the genai SDK.
func NewGeminiAdapter(apiKey, baseURL, model string, timeout time.Duration) *GeminiAdapter {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &GeminiAdapter{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *GeminiAdapter) Name() string         { return "gemini" }
func (g *GeminiAdapter) DefaultModel() string { return g.model }

func (g *GeminiAdapter) Invoke(ctx context.Context, req Request) (Response, error) {
	if g.apiKey == "" {
		return Response{}, fmt.Errorf("gemini: API key not configured")
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.UserPrompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.TemperatureOrDefault(),
			MaxOutputTokens: req.MaxTokensOrDefault(),
		},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(backoffSeconds(attempt)) * time.Second)
		}

		resp, err := g.doRequest(ctx, url, body, model)
		if err != nil {
			lastErr = err
			if isRateLimitError(err.Error()) {
				continue
			}
			return Response{}, err
		}
		return resp, nil
	}

	return Response{}, fmt.Errorf("gemini: max retries exceeded: %w", lastErr)
}

func (g *GeminiAdapter) doRequest(ctx context.Context, url string, body geminiRequest, model string) (Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("gemini: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("gemini: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, fmt.Errorf("gemini: rate limit exceeded (429)")
	}
	if resp.StatusCode != http.StatusOK {
		logging.ProviderError("gemini: API returned status %d: %s", resp.StatusCode, string(respBody))
		return Response{}, fmt.Errorf("gemini: API request failed with status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("gemini: failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		if parsed.Error.Status == "RESOURCE_EXHAUSTED" {
			return Response{}, fmt.Errorf("gemini: RESOURCE_EXHAUSTED: %s", parsed.Error.Message)
		}
		return Response{}, fmt.Errorf("gemini: API error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return Response{}, fmt.Errorf("gemini: no completion returned")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return Response{
		Text:       strings.TrimSpace(text.String()),
		Model:      model,
		StopReason: parsed.Candidates[0].FinishReason,
		Usage: Usage{
			PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
			CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      parsed.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
