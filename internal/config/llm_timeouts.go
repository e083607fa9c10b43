package config

import "time"

// LLMTimeouts centralizes timeout configuration for provider calls.
//
// In Go, the SHORTEST timeout in the chain wins: if a provider's HTTP client
// has a 5-minute timeout but the call is wrapped in a 30-second context, the
// context wins and the call fails after 30 seconds. PerCallTimeout is the
// context deadline every orchestrator run applies; HTTPClientTimeout should
// always be >= it.
type LLMTimeouts struct {
	// HTTPClientTimeout bounds a single provider HTTP round trip, including
	// connection, TLS handshake, and full response body read.
	HTTPClientTimeout time.Duration `json:"http_client_timeout"`

	// PerCallTimeout is the context deadline the orchestrator applies to a
	// single provider invocation (one attempt, not the whole retry sequence)
	// for text tasks, and the fallback for any task class without its own
	// entry below.
	PerCallTimeout time.Duration `json:"per_call_timeout"`

	// HeroImageCallTimeout is the per-attempt deadline for the hero-image
	// pipeline (image_prompt, image_caption), which waits on a slower media
	// provider than a plain text completion.
	HeroImageCallTimeout time.Duration `json:"hero_image_call_timeout"`

	// VideoCallTimeout is the per-attempt deadline for the video pipeline
	// (video_config, video_storyboard, video_compliance, video_caption),
	// which waits on the slowest media provider of the three classes.
	VideoCallTimeout time.Duration `json:"video_call_timeout"`

	// RetryBackoff is the fixed schedule applied between orchestrator retry
	// attempts (spec: [1s, 3s] for a 3-attempt run).
	RetryBackoff []time.Duration `json:"retry_backoff"`

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int `json:"max_retries"`

	// RateLimitDelay is the minimum spacing between consecutive calls to the
	// same provider, applied client-side ahead of any server-side 429.
	RateLimitDelay time.Duration `json:"rate_limit_delay"`
}

// DefaultLLMTimeouts returns the timeout schedule used in production.
func DefaultLLMTimeouts() LLMTimeouts {
	return LLMTimeouts{
		HTTPClientTimeout:    2 * time.Minute,
		PerCallTimeout:       30 * time.Second,
		HeroImageCallTimeout: 120 * time.Second,
		VideoCallTimeout:     300 * time.Second,
		RetryBackoff:         []time.Duration{1 * time.Second, 3 * time.Second},
		MaxRetries:           2,
		RateLimitDelay:       100 * time.Millisecond,
	}
}

// Global singleton for consistent timeout access across packages that don't
// carry their own *config.Config (kept for parity with the rest of the
// package's access pattern).
var globalLLMTimeouts = DefaultLLMTimeouts()

// GetLLMTimeouts returns the global LLM timeout configuration.
func GetLLMTimeouts() LLMTimeouts {
	return globalLLMTimeouts
}

// SetLLMTimeouts updates the global LLM timeout configuration. Call early in
// application startup, before any orchestrator runs start.
func SetLLMTimeouts(t LLMTimeouts) {
	globalLLMTimeouts = t
}
