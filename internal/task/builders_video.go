package task

// BuildVideoConfig renders the video_config task prompt: the first staged
// video-planning call, establishing shot count, duration, and pacing.
func BuildVideoConfig(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"duration_seconds": "integer, 15-60",
		"shot_count":       "integer, 3-8",
		"pacing":           "one of fast|moderate|slow",
		"tone":             "string",
	}
	return renderPrompt(envelope("video_config", ctx, contract, nil), ctx.StrictMode)
}

// BuildVideoStoryboard renders the video_storyboard task prompt: per-shot
// scene descriptions consuming video_config's output.
func BuildVideoStoryboard(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"shots": []map[string]any{{
			"index":       "integer, 0-based",
			"description": "string",
			"on_screen":   "string, optional overlay text",
		}},
	}
	extra := map[string]any{
		"videoConfig": ctx.PriorStageOutput,
	}
	return renderPrompt(envelope("video_storyboard", ctx, contract, extra), ctx.StrictMode)
}

// BuildVideoCaption renders the video_caption task prompt: a short caption
// and hashtags consuming video_storyboard's output.
func BuildVideoCaption(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"caption":  "string, <=180 chars",
		"hashtags": "array of strings, no leading #",
	}
	extra := map[string]any{
		"storyboard": ctx.PriorStageOutput,
	}
	return renderPrompt(envelope("video_caption", ctx, contract, extra), ctx.StrictMode)
}

// BuildVideoCompliance renders the video_compliance task prompt: a final
// compliance pass over the assembled storyboard, flagging prohibited claims.
func BuildVideoCompliance(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"approved":         "boolean",
		"compliance_flags": "array of up to 5 strings",
	}
	extra := map[string]any{
		"storyboard": ctx.PriorStageOutput,
		"guardrails": "Flag prohibited claims: guaranteed income, discriminatory language, unverifiable benefits.",
	}
	return renderPrompt(envelope("video_compliance", ctx, contract, extra), ctx.StrictMode)
}
