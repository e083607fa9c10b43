package task

// BuildAssetMaster renders the asset_master task prompt: the first creative
// pass for a single channel+format, establishing the plan's baseline copy.
func BuildAssetMaster(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"plan_id": "string, echo planId",
		"copy": map[string]any{
			"headline": "string",
			"body":     "string",
			"cta":      "string",
		},
	}
	extra := map[string]any{
		"planId":    ctx.PlanID,
		"channelId": ctx.ChannelID,
		"formatId":  ctx.FormatID,
	}
	return renderPrompt(envelope("asset_master", ctx, contract, extra), ctx.StrictMode)
}

// BuildAssetAdapt renders the asset_adapt task prompt: adapts a prior
// master's copy to a sibling channel+format without changing its substance.
func BuildAssetAdapt(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"plan_id": "string, echo planId",
		"copy": map[string]any{
			"headline": "string",
			"body":     "string",
			"cta":      "string",
		},
	}
	extra := map[string]any{
		"planId":       ctx.PlanID,
		"channelId":    ctx.ChannelID,
		"formatId":     ctx.FormatID,
		"masterOutput": ctx.PriorStageOutput,
		"guardrails":   "Adapt tone and length to the target format; do not change factual content from masterOutput.",
	}
	return renderPrompt(envelope("asset_adapt", ctx, contract, extra), ctx.StrictMode)
}

// BuildAssetChannelBatch renders the asset_channel_batch task prompt: a
// single call that produces every format row for one channel at once, used
// when the coordinator prefers fewer round trips over per-format isolation.
func BuildAssetChannelBatch(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"plan_id": "string, echo planId",
		"assets": []map[string]any{{
			"formatId": "string",
			"copy": map[string]any{
				"headline": "string",
				"body":     "string",
				"cta":      "string",
			},
		}},
	}
	extra := map[string]any{
		"planId":    ctx.PlanID,
		"channelId": ctx.ChannelID,
	}
	return renderPrompt(envelope("asset_channel_batch", ctx, contract, extra), ctx.StrictMode)
}

// BuildImagePrompt renders the image_prompt task prompt: text-to-image
// prompt generation for the job's hero image.
func BuildImagePrompt(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"image_prompt": "string, a complete text-to-image generation prompt",
		"style_notes":  "string, optional",
	}
	return renderPrompt(envelope("image_prompt", ctx, contract, nil), ctx.StrictMode)
}

// BuildImageCaption renders the image_caption task prompt: a short caption
// plus hashtags for the generated hero image.
func BuildImageCaption(ctx TaskContext) (string, error) {
	contract := map[string]any{
		"caption":  "string, <=180 chars",
		"hashtags": "array of strings, no leading #",
	}
	extra := map[string]any{
		"imagePrompt": ctx.PriorStageOutput,
	}
	return renderPrompt(envelope("image_caption", ctx, contract, extra), ctx.StrictMode)
}
