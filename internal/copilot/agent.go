// Package copilot drives the copilot chat endpoint's bounded tool-call
// loop: append the user's turn, call the copilot_agent task, execute any
// requested tool, and repeat until the agent emits a final message or the
// step budget runs out (spec §4.H).
package copilot

import (
	"context"
	"fmt"
	"sync"

	"jobcore/internal/jobstore"
	"jobcore/internal/logging"
	"jobcore/internal/orchestrator"
	"jobcore/internal/task"
)

// Agent drives the copilot_agent tool-call loop against a job's persisted
// conversation and draft/refined/channel/asset state.
type Agent struct {
	store        *jobstore.Store
	orchestrator *orchestrator.Orchestrator
	maxToolSteps int

	jobLocksMu sync.Mutex
	jobLocks   map[string]*sync.Mutex
}

// New builds an Agent. maxToolSteps bounds the tool-call loop (spec: 4).
func New(store *jobstore.Store, orch *orchestrator.Orchestrator, maxToolSteps int) *Agent {
	if maxToolSteps < 1 {
		maxToolSteps = 4
	}
	return &Agent{
		store:        store,
		orchestrator: orch,
		maxToolSteps: maxToolSteps,
		jobLocks:     make(map[string]*sync.Mutex),
	}
}

func (a *Agent) jobMutex(jobID string) *sync.Mutex {
	a.jobLocksMu.Lock()
	defer a.jobLocksMu.Unlock()
	mu, ok := a.jobLocks[jobID]
	if !ok {
		mu = &sync.Mutex{}
		a.jobLocks[jobID] = mu
	}
	return mu
}

// TurnResult is what the chat endpoint returns to the caller (spec §4.H).
type TurnResult struct {
	Messages       []jobstore.CopilotMessage
	Actions        []task.CopilotAction
	UpdatedDraft   *jobstore.Draft
	UpdatedRefined *jobstore.Draft
}

// HandleTurn appends the user's message, then drives the tool-call loop
// (bounded to a.maxToolSteps) until the agent emits a final message.
func (a *Agent) HandleTurn(ctx context.Context, jobID, stage, message, clientMessageID string) (TurnResult, error) {
	mu := a.jobMutex(jobID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := a.store.AppendCopilotMessage(jobID, jobstore.CopilotMessage{
		Role:            "user",
		Content:         message,
		ClientMessageID: clientMessageID,
	}); err != nil {
		return TurnResult{}, fmt.Errorf("copilot: append user message: %w", err)
	}

	result := TurnResult{}
	toolCalls := 0

	for step := 0; step < a.maxToolSteps; step++ {
		conversation, err := a.loadConversation(jobID)
		if err != nil {
			return result, err
		}

		taskCtx := task.TaskContext{JobID: jobID, Conversation: conversation}
		run := a.orchestrator.Run(ctx, "copilot_agent", taskCtx, "copilot")
		if run.Failure != nil {
			logging.CopilotError("job=%s: copilot_agent failed: %s", jobID, run.Failure.Message)
			msg, err := a.store.AppendCopilotMessage(jobID, jobstore.CopilotMessage{
				Role:    "assistant",
				Content: "I couldn't complete that right now. Please try again.",
			})
			if err == nil {
				result.Messages = append(result.Messages, msg)
			}
			logging.AuditWithJob(jobID).CopilotTurn(jobID, clientMessageID, toolCalls, false)
			return result, nil
		}

		agentResult, ok := run.Value.(task.CopilotResult)
		if !ok {
			return result, fmt.Errorf("copilot: unexpected copilot_agent result type %T", run.Value)
		}

		if agentResult.IsToolCall {
			toolCalls++
			outcome := a.applyAction(jobID, agentResult.Tool, &result)
			toolMsg, err := a.store.AppendCopilotMessage(jobID, jobstore.CopilotMessage{
				Role:    "tool",
				Content: outcome,
			})
			if err != nil {
				return result, fmt.Errorf("copilot: append tool message: %w", err)
			}
			result.Messages = append(result.Messages, toolMsg)
			continue
		}

		for _, action := range agentResult.Actions {
			a.applyAction(jobID, action, &result)
			result.Actions = append(result.Actions, action)
		}

		assistantMsg, err := a.store.AppendCopilotMessage(jobID, jobstore.CopilotMessage{
			Role:    "assistant",
			Content: agentResult.Message,
		})
		if err != nil {
			return result, fmt.Errorf("copilot: append assistant message: %w", err)
		}
		result.Messages = append(result.Messages, assistantMsg)
		logging.AuditWithJob(jobID).CopilotTurn(jobID, clientMessageID, toolCalls, true)
		return result, nil
	}

	logging.CopilotWarn("job=%s: tool-call loop exhausted %d steps without a final message", jobID, a.maxToolSteps)
	truncated, err := a.store.AppendCopilotMessage(jobID, jobstore.CopilotMessage{
		Role:    "assistant",
		Content: "I've made some changes but ran out of steps for this turn. Ask me to continue if needed.",
	})
	if err == nil {
		result.Messages = append(result.Messages, truncated)
	}
	logging.AuditWithJob(jobID).CopilotTurn(jobID, clientMessageID, toolCalls, false)
	return result, nil
}

func (a *Agent) loadConversation(jobID string) ([]task.ConversationMessage, error) {
	stored, err := a.store.GetConversation(jobID)
	if err != nil {
		return nil, fmt.Errorf("copilot: load conversation: %w", err)
	}
	conversation := make([]task.ConversationMessage, 0, len(stored))
	for _, msg := range stored {
		conversation = append(conversation, task.ConversationMessage{Role: msg.Role, Content: msg.Content})
	}
	return conversation, nil
}

// applyAction executes one validated tool action against the store and
// returns a short human-readable outcome description for the tool message.
// Unknown action types (already rejected by task.ValidateAction upstream)
// never reach here; a store error is reported but does not abort the turn.
func (a *Agent) applyAction(jobID string, action task.CopilotAction, result *TurnResult) string {
	switch action.Type {
	case task.ActionFieldUpdate:
		return a.applyFieldUpdate(jobID, action.Input, result)
	case task.ActionFieldBatchUpdate:
		return a.applyFieldBatchUpdate(jobID, action.Input, result)
	case task.ActionRefinedFieldUpdate:
		return a.applyRefinedFieldUpdate(jobID, action.Input, result)
	case task.ActionRefinedFieldBatchUpdate:
		return a.applyRefinedFieldBatchUpdate(jobID, action.Input, result)
	case task.ActionChannelRecommendationsUpdate:
		return a.applyChannelRecommendationsUpdate(jobID, action.Input)
	case task.ActionAssetUpdate:
		return a.applyAssetUpdate(jobID, action.Input)
	default:
		return fmt.Sprintf("ignored unknown action type %q", action.Type)
	}
}

func (a *Agent) applyFieldUpdate(jobID string, input map[string]any, result *TurnResult) string {
	fieldID, _ := input["fieldId"].(string)
	if fieldID == "" {
		return "field_update missing fieldId"
	}
	draft, err := a.store.PutDraft(jobID, map[string]any{fieldID: input["value"]})
	if err != nil {
		logging.CopilotError("job=%s: field_update %s failed: %v", jobID, fieldID, err)
		return fmt.Sprintf("field_update %s failed: %v", fieldID, err)
	}
	result.UpdatedDraft = &draft
	return fmt.Sprintf("updated %s", fieldID)
}

func (a *Agent) applyFieldBatchUpdate(jobID string, input map[string]any, result *TurnResult) string {
	fields, _ := input["fields"].(map[string]any)
	if len(fields) == 0 {
		return "field_batch_update missing fields"
	}
	draft, err := a.store.PutDraft(jobID, fields)
	if err != nil {
		logging.CopilotError("job=%s: field_batch_update failed: %v", jobID, err)
		return fmt.Sprintf("field_batch_update failed: %v", err)
	}
	result.UpdatedDraft = &draft
	return fmt.Sprintf("updated %d fields", len(fields))
}

// refinedPatch merges patch into the job's current refined draft (falling
// back to the job's current draft when no refinement exists yet)
// and persists it, preserving the existing summary/metadata/failure.
func (a *Agent) refinedPatch(jobID string, patch map[string]any) (jobstore.Draft, error) {
	job, found, err := a.store.GetJob(jobID)
	if err != nil {
		return jobstore.Draft{}, err
	}
	if !found {
		return jobstore.Draft{}, fmt.Errorf("job %q not found", jobID)
	}

	base := job.Draft
	if job.Refined != nil {
		base = *job.Refined
	}
	merged := base.ToMap()
	for k, v := range patch {
		merged[k] = v
	}
	refined, err := jobstore.NormalizeDraft(merged)
	if err != nil {
		return jobstore.Draft{}, err
	}

	var metadata jobstore.RefinementMetadata
	if job.RefinementMetadata != nil {
		metadata = *job.RefinementMetadata
	}
	if err := a.store.PutRefinement(jobID, refined, job.RefinementSummary, metadata, job.RefinementFailure); err != nil {
		return jobstore.Draft{}, err
	}
	return refined, nil
}

func (a *Agent) applyRefinedFieldUpdate(jobID string, input map[string]any, result *TurnResult) string {
	fieldID, _ := input["fieldId"].(string)
	if fieldID == "" {
		return "refined_field_update missing fieldId"
	}
	refined, err := a.refinedPatch(jobID, map[string]any{fieldID: input["value"]})
	if err != nil {
		logging.CopilotError("job=%s: refined_field_update %s failed: %v", jobID, fieldID, err)
		return fmt.Sprintf("refined_field_update %s failed: %v", fieldID, err)
	}
	result.UpdatedRefined = &refined
	return fmt.Sprintf("updated refined %s", fieldID)
}

func (a *Agent) applyRefinedFieldBatchUpdate(jobID string, input map[string]any, result *TurnResult) string {
	fields, _ := input["fields"].(map[string]any)
	if len(fields) == 0 {
		return "refined_field_batch_update missing fields"
	}
	refined, err := a.refinedPatch(jobID, fields)
	if err != nil {
		logging.CopilotError("job=%s: refined_field_batch_update failed: %v", jobID, err)
		return fmt.Sprintf("refined_field_batch_update failed: %v", err)
	}
	result.UpdatedRefined = &refined
	return fmt.Sprintf("updated %d refined fields", len(fields))
}

func (a *Agent) applyChannelRecommendationsUpdate(jobID string, input map[string]any) string {
	rawRecs, _ := input["recommendations"].([]any)
	recs := make([]jobstore.ChannelRecommendation, 0, len(rawRecs))
	for _, raw := range rawRecs {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		channel, _ := row["channel"].(string)
		if channel == "" {
			continue
		}
		reason, _ := row["reason"].(string)
		rec := jobstore.ChannelRecommendation{Channel: channel, Reason: reason}
		if cpa, ok := row["expectedCPA"].(float64); ok {
			rec.ExpectedCPA = &cpa
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return "channel_recommendations_update missing recommendations"
	}
	if _, err := a.store.SetChannelRecommendations(jobID, recs, nil); err != nil {
		logging.CopilotError("job=%s: channel_recommendations_update failed: %v", jobID, err)
		return fmt.Sprintf("channel_recommendations_update failed: %v", err)
	}
	return fmt.Sprintf("updated %d channel recommendations", len(recs))
}

func (a *Agent) applyAssetUpdate(jobID string, input map[string]any) string {
	assetID, _ := input["assetId"].(string)
	if assetID == "" {
		return "asset_update missing assetId"
	}
	status, _ := input["status"].(string)
	if status == "" {
		status = string(jobstore.AssetReady)
	}
	content, _ := input["content"].(map[string]any)
	logoURL, _ := input["logoUrl"].(string)

	if err := a.store.UpsertAsset(jobID, assetID, jobstore.AssetStatus(status), content, logoURL); err != nil {
		logging.CopilotError("job=%s: asset_update %s failed: %v", jobID, assetID, err)
		return fmt.Sprintf("asset_update %s failed: %v", assetID, err)
	}
	return fmt.Sprintf("updated asset %s", assetID)
}
