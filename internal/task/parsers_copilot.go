package task

// CopilotActionType enumerates the closed set of actions a copilot turn may
// emit (spec §4.H).
type CopilotActionType string

const (
	ActionFieldUpdate                  CopilotActionType = "field_update"
	ActionFieldBatchUpdate             CopilotActionType = "field_batch_update"
	ActionRefinedFieldUpdate           CopilotActionType = "refined_field_update"
	ActionRefinedFieldBatchUpdate      CopilotActionType = "refined_field_batch_update"
	ActionChannelRecommendationsUpdate CopilotActionType = "channel_recommendations_update"
	ActionAssetUpdate                  CopilotActionType = "asset_update"
)

var validActionTypes = map[CopilotActionType]bool{
	ActionFieldUpdate:                  true,
	ActionFieldBatchUpdate:             true,
	ActionRefinedFieldUpdate:           true,
	ActionRefinedFieldBatchUpdate:      true,
	ActionChannelRecommendationsUpdate: true,
	ActionAssetUpdate:                  true,
}

// CopilotAction is one tool invocation/application the copilot agent
// requested or applied.
type CopilotAction struct {
	Type  CopilotActionType `json:"type"`
	Input map[string]any    `json:"input"`
}

// CopilotResult is the parsed copilot_agent-task output: a tagged sum of
// "requests a tool call" or "emits a final message".
type CopilotResult struct {
	IsToolCall bool            `json:"isToolCall"`
	Tool       CopilotAction   `json:"tool,omitempty"`
	Message    string          `json:"message,omitempty"`
	Actions    []CopilotAction `json:"actions,omitempty"`
}

// ValidateAction reports whether a's Type is one of the closed action set.
// Callers act on the result: ParseCopilotAgent rejects a tool_call with an
// unknown tool and drops unknown entries from a final message's actions.
// No count of dropped actions is kept.
func ValidateAction(a CopilotAction) bool {
	return validActionTypes[a.Type]
}

func parseAction(raw map[string]any) (CopilotAction, bool) {
	typ := CopilotActionType(AsString(raw["tool"]))
	if typ == "" {
		typ = CopilotActionType(AsString(raw["type"]))
	}
	input, _ := raw["input"].(map[string]any)
	action := CopilotAction{Type: typ, Input: input}
	return action, ValidateAction(action)
}

// ParseCopilotAgent implements the copilot_agent task's parser.
func ParseCopilotAgent(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	switch AsString(obj["type"]) {
	case "tool_call":
		action, valid := parseAction(obj)
		if !valid {
			return nil, NewParseError(ReasonStructuredMissing, "unknown or missing tool_call.tool", resp.Text)
		}
		return CopilotResult{IsToolCall: true, Tool: action}, nil

	case "final":
		message := AsString(obj["message"])
		if message == "" {
			return nil, NewParseError(ReasonStructuredMissing, "final.message is required", resp.Text)
		}
		rawActions, _ := obj["actions"].([]any)
		actions := make([]CopilotAction, 0, len(rawActions))
		for _, raw := range rawActions {
			row, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			action, valid := parseAction(row)
			if valid {
				actions = append(actions, action)
			}
		}
		return CopilotResult{IsToolCall: false, Message: message, Actions: actions}, nil

	default:
		return nil, NewParseError(ReasonStructuredMissing, "type must be tool_call or final", resp.Text)
	}
}
