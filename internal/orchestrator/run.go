// Package orchestrator implements the build -> invoke -> parse -> retry
// algorithm that turns a named task into a provider call and a typed
// result, per spec §4.E.
package orchestrator

import (
	"context"
	"time"

	"jobcore/internal/config"
	"jobcore/internal/logging"
	"jobcore/internal/provider"
	"jobcore/internal/routing"
	"jobcore/internal/task"
)

// Failure is the typed error a Run call returns when every attempt is
// exhausted (spec §7: components return typed results, never throw across
// component boundaries for expected failure modes).
type Failure struct {
	Reason     string
	Message    string
	RawPreview string
}

func (f *Failure) Error() string {
	return f.Reason + ": " + f.Message
}

// Result is what Run returns: either Value is set and Failure is nil, or
// vice versa.
type Result struct {
	Task     string
	Provider config.Provider
	Model    string
	Value    any
	Failure  *Failure
}

// PreviewLogger is a fire-and-forget hook invoked after every adapter call
// (spec §4.E(i)); its own panics/errors are swallowed.
type PreviewLogger func(provider config.Provider, text string)

// Orchestrator runs tasks against a Policy-selected provider, wrapping
// every resolved Adapter in a provider.TracingAdapter for telemetry.
type Orchestrator struct {
	policy        *routing.Policy
	registry      *provider.Registry
	timeouts      config.LLMTimeouts
	previewLogger PreviewLogger
}

// New builds an Orchestrator.
func New(policy *routing.Policy, registry *provider.Registry, timeouts config.LLMTimeouts) *Orchestrator {
	return &Orchestrator{policy: policy, registry: registry, timeouts: timeouts}
}

// SetPreviewLogger installs the fire-and-forget preview hook.
func (o *Orchestrator) SetPreviewLogger(fn PreviewLogger) {
	o.previewLogger = fn
}

// Run executes taskName against ctx, making up to the task descriptor's
// Retries attempts with the configured RetryBackoff delays between them.
// route is an ambient telemetry tag (e.g. the HTTP route
// that triggered this run); it carries no behavioral meaning.
func (o *Orchestrator) Run(ctx context.Context, taskName string, taskCtx task.TaskContext, route string) Result {
	descriptor, ok := task.Lookup(taskName)
	if !ok {
		logging.OrchestratorError("task=%s route=%s: unknown task", taskName, route)
		return Result{Task: taskName, Failure: &Failure{Reason: "unknown_task", Message: "no such task: " + taskName}}
	}

	providerName, model := o.policy.Select(taskName)
	if providerName == "" {
		return Result{Task: taskName, Failure: &Failure{Reason: "no_provider", Message: "no provider configured with an API key"}}
	}

	adapter, err := o.registry.Adapter(providerName)
	if err != nil {
		return Result{Task: taskName, Provider: providerName, Failure: &Failure{Reason: "no_provider", Message: err.Error()}}
	}
	tracedAdapter := provider.NewTracingAdapter(adapter, taskCtx.JobID, taskName)

	retries := descriptor.Retries
	if retries <= 0 {
		retries = 3
	}
	backoff := o.timeouts.RetryBackoff

	var lastFailure *Failure

	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			delay := backoffForAttempt(backoff, attempt)
			logging.Orchestrator("task=%s route=%s attempt=%d: sleeping %v before retry", taskName, route, attempt, delay)
			select {
			case <-ctx.Done():
				return Result{Task: taskName, Provider: providerName, Model: model, Failure: &Failure{Reason: "invoke_failed", Message: ctx.Err().Error()}}
			case <-time.After(delay):
			}
		}

		taskCtx.Attempt = attempt
		taskCtx.StrictMode = descriptor.StrictOnRetry && attempt > 0

		userPrompt, err := descriptor.Builder(taskCtx)
		if err != nil {
			logging.OrchestratorError("task=%s route=%s: builder failed fatally: %v", taskName, route, err)
			return Result{Task: taskName, Provider: providerName, Model: model, Failure: &Failure{Reason: "builder_failed", Message: err.Error()}}
		}
		if userPrompt == "" {
			logging.OrchestratorError("task=%s route=%s: builder produced empty prompt", taskName, route)
			return Result{Task: taskName, Provider: providerName, Model: model, Failure: &Failure{Reason: "builder_failed", Message: "empty prompt"}}
		}

		systemPrompt := descriptor.SystemPrompt
		if descriptor.SystemBuilder != nil {
			systemPrompt = descriptor.SystemBuilder(taskCtx)
		}

		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout(route))
		resp, invokeErr := tracedAdapter.Invoke(callCtx, provider.Request{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			Model:        model,
			Temperature:  descriptor.Temperature,
			MaxTokens:    descriptor.MaxTokens,
		})
		cancel()

		if invokeErr != nil {
			lastFailure = &Failure{Reason: "invoke_failed", Message: invokeErr.Error()}
			continue
		}

		o.fireAndForgetPreview(providerName, resp.Text)

		value, parseErr := descriptor.Parser(task.ProviderResponse{Text: resp.Text, Model: resp.Model}, taskCtx)
		if parseErr != nil {
			lastFailure = &Failure{Reason: string(parseErr.Reason), Message: parseErr.Message, RawPreview: parseErr.RawPreview}
			continue
		}

		return Result{Task: taskName, Provider: providerName, Model: resp.Model, Value: value}
	}

	if lastFailure == nil {
		lastFailure = &Failure{Reason: "unknown_failure", Message: "retries exhausted with no recorded error"}
	}
	logging.OrchestratorWarn("task=%s route=%s: exhausted %d attempts, last failure: %s", taskName, route, retries, lastFailure.Error())
	return Result{Task: taskName, Provider: providerName, Model: model, Failure: lastFailure}
}

// callTimeout returns the per-attempt context deadline for route's task
// class (spec §5: 30s text / 120s hero-image / 300s video). Any route
// outside {hero_image, video} is treated as a text task.
func (o *Orchestrator) callTimeout(route string) time.Duration {
	switch route {
	case "hero_image":
		if o.timeouts.HeroImageCallTimeout > 0 {
			return o.timeouts.HeroImageCallTimeout
		}
	case "video":
		if o.timeouts.VideoCallTimeout > 0 {
			return o.timeouts.VideoCallTimeout
		}
	}
	return o.timeouts.PerCallTimeout
}

// fireAndForgetPreview invokes the preview logger, recovering from any
// panic so a bad hook can never break a run (spec §4.E(i)).
func (o *Orchestrator) fireAndForgetPreview(providerName config.Provider, text string) {
	if o.previewLogger == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.OrchestratorWarn("previewLogger panicked: %v", r)
		}
	}()
	o.previewLogger(providerName, text)
}

func backoffForAttempt(schedule []time.Duration, attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(schedule) {
		if len(schedule) == 0 {
			return time.Second
		}
		return schedule[len(schedule)-1]
	}
	return schedule[idx]
}
