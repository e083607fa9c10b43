package task

import "testing"

func TestParseCopilotAgent_ToolCall(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{
		"type": "tool_call",
		"tool": "field_update",
		"input": map[string]any{"fieldId": "seniorityLevel", "value": "senior"},
	}}
	result, perr := ParseCopilotAgent(resp, TaskContext{})
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(CopilotResult)
	if !out.IsToolCall || out.Tool.Type != ActionFieldUpdate {
		t.Errorf("unexpected tool call result: %+v", out)
	}
}

func TestParseCopilotAgent_UnknownToolIsError(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{"type": "tool_call", "tool": "delete_everything"}}
	_, perr := ParseCopilotAgent(resp, TaskContext{})
	if perr == nil || perr.Reason != ReasonStructuredMissing {
		t.Fatalf("expected ReasonStructuredMissing for unknown tool, got %v", perr)
	}
}

func TestParseCopilotAgent_FinalDropsInvalidActions(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{
		"type":    "final",
		"message": "Updated the role title.",
		"actions": []any{
			map[string]any{"type": "field_update", "input": map[string]any{"fieldId": "roleTitle", "value": "x"}},
			map[string]any{"type": "unknown_action"},
		},
	}}
	result, perr := ParseCopilotAgent(resp, TaskContext{})
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(CopilotResult)
	if out.IsToolCall {
		t.Error("final response should not be a tool call")
	}
	if len(out.Actions) != 1 {
		t.Fatalf("expected 1 surviving action, got %d", len(out.Actions))
	}
}

func TestParseCopilotAgent_FinalRequiresMessage(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{"type": "final"}}
	_, perr := ParseCopilotAgent(resp, TaskContext{})
	if perr == nil || perr.Reason != ReasonStructuredMissing {
		t.Fatalf("expected ReasonStructuredMissing, got %v", perr)
	}
}

func TestParseCopilotAgent_UnknownTypeIsError(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{"type": "something_else"}}
	_, perr := ParseCopilotAgent(resp, TaskContext{})
	if perr == nil {
		t.Fatal("expected a parse error for an unrecognized type")
	}
}

func TestValidateAction(t *testing.T) {
	if !ValidateAction(CopilotAction{Type: ActionAssetUpdate}) {
		t.Error("ActionAssetUpdate should be valid")
	}
	if ValidateAction(CopilotAction{Type: "not_a_real_action"}) {
		t.Error("unknown action type should not validate")
	}
}
