package config

import "fmt"

// Limits enforces system-wide concurrency constraints.
type Limits struct {
	// AssetParallelism bounds the asset coordinator's errgroup fan-out
	// (spec default: 4).
	AssetParallelism int `json:"asset_parallelism"`

	// MaxConcurrentAPICalls bounds simultaneous in-flight provider calls
	// across the whole process.
	MaxConcurrentAPICalls int `json:"max_concurrent_api_calls"`

	// CopilotMaxToolSteps bounds the copilot tool-call loop (spec: 4).
	CopilotMaxToolSteps int `json:"copilot_max_tool_steps"`
}

// DefaultLimits returns the limits used in production.
func DefaultLimits() Limits {
	return Limits{
		AssetParallelism:      4,
		MaxConcurrentAPICalls: 8,
		CopilotMaxToolSteps:   4,
	}
}

// Validate checks that limits are within acceptable ranges.
func (l Limits) Validate() error {
	if l.AssetParallelism < 1 {
		return fmt.Errorf("asset_parallelism must be >= 1")
	}
	if l.MaxConcurrentAPICalls < 1 {
		return fmt.Errorf("max_concurrent_api_calls must be >= 1")
	}
	if l.CopilotMaxToolSteps < 1 {
		return fmt.Errorf("copilot_max_tool_steps must be >= 1")
	}
	return nil
}
