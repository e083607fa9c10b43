package task

// BuildCopilotAgent renders the copilot_agent task prompt: a conversational
// planner that either requests a tool call or emits a final message.
func BuildCopilotAgent(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"type": "one of tool_call|final",
		"_if_tool_call": map[string]any{
			"tool":  "one of field_update|field_batch_update|refined_field_update|refined_field_batch_update|channel_recommendations_update|asset_update",
			"input": "object, shape depends on tool",
		},
		"_if_final": map[string]any{
			"message": "string",
			"actions": "array of applied actions, same shapes as tool inputs above",
		},
	}
	extra := map[string]any{
		"conversation": ctx.Conversation,
		"guardrails":   "Emit exactly one of tool_call or final per turn. Bound tool calls to what the user's last message asked for.",
	}
	return renderPrompt(envelope("copilot_agent", ctx, contract, extra), ctx.StrictMode)
}
