package task

// BuildSuggest renders the suggest task prompt: autofill candidates for
// empty fields, or fields explicitly visible to the UI.
func BuildSuggest(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"autofill_candidates": []map[string]any{{
			"fieldId":    "string, one of the closed draft field ids",
			"value":      "string",
			"rationale":  "string, brief",
			"confidence": "number in [0,1]",
			"source":     "string, e.g. company_context|industry_norm|inference",
		}},
	}
	extra := map[string]any{
		"visibleFieldIds":     ctx.VisibleFieldIds,
		"previousSuggestions": ctx.PreviousSuggestions,
		"updatedFieldId":      ctx.UpdatedFieldID,
		"companyContext":      ctx.CompanyContext,
		"guardrails":          "Only suggest values for empty fields or fields explicitly listed in visibleFieldIds.",
	}
	return renderPrompt(envelope("suggest", ctx, contract, extra), ctx.StrictMode)
}

// BuildRefine renders the refine task prompt: a full-draft rewrite plus an
// improvement analysis.
func BuildRefine(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"refined_job": "object with every draft field id present; missing values fall back to jobSnapshot",
		"summary":     "string, non-empty",
		"analysis": map[string]any{
			"improvement_score": "integer in [0,100]",
			"original_score":    "integer in [0,100]",
			"impact_summary":    "string",
			"key_improvements":  []string{"string"},
		},
	}
	extra := map[string]any{
		"guardrails": "refined_job must contain every schema field from the closed field-id set.",
	}
	return renderPrompt(envelope("refine", ctx, contract, extra), ctx.StrictMode)
}

// BuildChannels renders the channels task prompt: distribution channel
// recommendations constrained to the caller's allow-list.
func BuildChannels(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"recommendations": []map[string]any{{
			"channel":     "string, must be one of supportedChannels",
			"reason":      "string, non-empty",
			"expectedCPA": "number >= 0, optional",
		}},
	}
	extra := map[string]any{
		"supportedChannels": ctx.SupportedChannels,
		"guardrails":        "channel must be drawn from supportedChannels; do not invent new channels.",
	}
	return renderPrompt(envelope("channels", ctx, contract, extra), ctx.StrictMode)
}

// BuildChannelPicker renders the channel_picker task prompt: single-channel
// selection with role-family classification, geo rules, and fit scoring.
func BuildChannelPicker(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"top_channel": map[string]any{
			"id":              "string, must be one of supportedChannels",
			"fit_score":       "number in [0,100]",
			"reason_short":    "string, <=160 chars",
		},
		"recommended_medium": "one of video|image|text",
		"copy_hint":          "string",
		"alternatives":       "array of up to 2 channel ids",
		"compliance_flags":   "array of up to 5 strings",
	}
	extra := map[string]any{
		"supportedChannels": ctx.SupportedChannels,
		"guardrails":        "Score using geo fit, audience affinity, expected speed-to-fill, and media fit. Limit alternatives to 2 and compliance_flags to 5.",
	}
	return renderPrompt(envelope("channel_picker", ctx, contract, extra), ctx.StrictMode)
}
