package provider

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"jobcore/internal/logging"
)

// MediaResult carries raw generated media bytes back to the asset coordinator,
// which is responsible for persisting them and recording the storage URL on
// the job's hero-image/video record.
type MediaResult struct {
	Bytes    []byte
	MimeType string
}

// GeminiImageAdapter generates hero images via Gemini's Imagen models. It is
// a distinct type from GeminiAdapter (the REST text adapter) because image
// generation goes through the genai SDK's Models.GenerateImages call rather
// than a raw generateContent POST.
type GeminiImageAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiImageAdapter builds an Imagen-backed hero-image generator.
func NewGeminiImageAdapter(ctx context.Context, apiKey, model string) (*GeminiImageAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini image: API key is required")
	}
	if model == "" {
		model = "imagen-4.0-generate-001"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini image: failed to create genai client: %w", err)
	}

	return &GeminiImageAdapter{client: client, model: model}, nil
}

// GenerateImage renders a single hero image for prompt and returns the raw
// image bytes of the first candidate.
func (g *GeminiImageAdapter) GenerateImage(ctx context.Context, prompt string) (MediaResult, error) {
	logging.HeroImage("generating hero image: model=%s prompt_len=%d", g.model, len(prompt))

	start := time.Now()
	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	duration := time.Since(start)

	if err != nil {
		logging.HeroImageError("hero image generation failed after %v: %v", duration, err)
		return MediaResult{}, fmt.Errorf("gemini image: generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		logging.HeroImageError("hero image generation returned no candidates")
		return MediaResult{}, fmt.Errorf("gemini image: no image returned")
	}

	img := resp.GeneratedImages[0].Image
	logging.HeroImage("hero image generated in %v, bytes=%d", duration, len(img.ImageBytes))

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return MediaResult{Bytes: img.ImageBytes, MimeType: mimeType}, nil
}

// GeminiVideoAdapter generates job-posting videos via Gemini's Veo models.
// Video generation is a long-running operation: the SDK returns an Operation
// handle that must be polled until done.
type GeminiVideoAdapter struct {
	client     *genai.Client
	model      string
	pollEvery  time.Duration
	pollBudget time.Duration
}

// NewGeminiVideoAdapter builds a Veo-backed video generator.
func NewGeminiVideoAdapter(ctx context.Context, apiKey, model string) (*GeminiVideoAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini video: API key is required")
	}
	if model == "" {
		model = "veo-3.0-generate-001"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini video: failed to create genai client: %w", err)
	}

	return &GeminiVideoAdapter{
		client:     client,
		model:      model,
		pollEvery:  10 * time.Second,
		pollBudget: 6 * time.Minute,
	}, nil
}

// GenerateVideo renders a single video for prompt, polling the long-running
// operation until it completes or pollBudget is exhausted.
func (g *GeminiVideoAdapter) GenerateVideo(ctx context.Context, prompt string) (MediaResult, error) {
	logging.Video("generating video: model=%s prompt_len=%d", g.model, len(prompt))

	start := time.Now()
	op, err := g.client.Models.GenerateVideos(ctx, g.model, prompt, nil, &genai.GenerateVideosConfig{})
	if err != nil {
		logging.VideoError("video generation submit failed: %v", err)
		return MediaResult{}, fmt.Errorf("gemini video: submit failed: %w", err)
	}

	deadline := time.Now().Add(g.pollBudget)
	for !op.Done {
		if time.Now().After(deadline) {
			logging.VideoError("video generation timed out after %v", g.pollBudget)
			return MediaResult{}, fmt.Errorf("gemini video: generation did not complete within %v", g.pollBudget)
		}
		select {
		case <-ctx.Done():
			return MediaResult{}, ctx.Err()
		case <-time.After(g.pollEvery):
		}

		op, err = g.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			logging.VideoError("video generation poll failed: %v", err)
			return MediaResult{}, fmt.Errorf("gemini video: poll failed: %w", err)
		}
	}
	duration := time.Since(start)

	if op.Error != nil {
		logging.VideoError("video generation failed after %v: %s", duration, op.Error.Message)
		return MediaResult{}, fmt.Errorf("gemini video: operation error: %s", op.Error.Message)
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		logging.VideoError("video generation returned no candidates")
		return MediaResult{}, fmt.Errorf("gemini video: no video returned")
	}

	video := op.Response.GeneratedVideos[0].Video
	logging.Video("video generated in %v, bytes=%d", duration, len(video.VideoBytes))

	mimeType := video.MIMEType
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	return MediaResult{Bytes: video.VideoBytes, MimeType: mimeType}, nil
}
