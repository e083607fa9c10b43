package provider

import (
	"context"
	"time"

	"jobcore/internal/logging"
)

// TracingAdapter wraps an Adapter and records every call: a Provider-category
// log line plus an llm_response audit event, tagged with the job and task that
// triggered it. The orchestrator wraps every Adapter it resolves in one of
// these rather than calling adapters bare.
type TracingAdapter struct {
	underlying Adapter
	jobID      string
	taskName   string
}

// NewTracingAdapter wraps underlying with job/task attribution for logging
// and auditing. jobID may be empty for calls made outside a job's lifecycle.
func NewTracingAdapter(underlying Adapter, jobID, taskName string) *TracingAdapter {
	return &TracingAdapter{underlying: underlying, jobID: jobID, taskName: taskName}
}

func (t *TracingAdapter) Name() string         { return t.underlying.Name() }
func (t *TracingAdapter) DefaultModel() string { return t.underlying.DefaultModel() }

// Invoke calls the underlying adapter, logging and auditing the attempt
// regardless of outcome.
func (t *TracingAdapter) Invoke(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = t.underlying.DefaultModel()
	}

	logging.Provider("llm call started: task=%s provider=%s model=%s job=%s prompt_len=%d",
		t.taskName, t.underlying.Name(), model, t.jobID, len(req.UserPrompt))

	start := time.Now()
	resp, err := t.underlying.Invoke(ctx, req)
	duration := time.Since(start)

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		logging.ProviderWarn("llm call failed: task=%s provider=%s job=%s duration=%v error=%s",
			t.taskName, t.underlying.Name(), t.jobID, duration, errMsg)
	} else {
		logging.Provider("llm call completed: task=%s provider=%s job=%s duration=%v response_len=%d",
			t.taskName, t.underlying.Name(), t.jobID, duration, len(resp.Text))
	}

	logging.AuditWithJob(t.jobID).LLMCall(t.taskName, model, duration.Milliseconds(), err == nil, errMsg)

	return resp, err
}
