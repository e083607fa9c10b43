package task

// AssetCopy is the creative-copy bundle a single asset task produces.
type AssetCopy struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
	CTA      string `json:"cta"`
}

// AssetResult is the parsed asset_master/asset_adapt-task output.
type AssetResult struct {
	PlanID string    `json:"planId"`
	Copy   AssetCopy `json:"copy"`
}

func parseAssetCopy(raw map[string]any) AssetCopy {
	return AssetCopy{
		Headline: AsString(raw["headline"]),
		Body:     AsString(raw["body"]),
		CTA:      AsString(raw["cta"]),
	}
}

// parseSingleAsset is shared by asset_master and asset_adapt: both tasks
// produce the identical {plan_id, copy} shape.
func parseSingleAsset(resp ProviderResponse) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	copyRaw, _ := obj["copy"].(map[string]any)
	copyBundle := parseAssetCopy(copyRaw)
	if copyBundle.Headline == "" && copyBundle.Body == "" {
		return nil, NewParseError(ReasonStructuredMissing, "copy.headline and copy.body both empty", resp.Text)
	}

	return AssetResult{
		PlanID: AsString(obj["plan_id"]),
		Copy:   copyBundle,
	}, nil
}

// ParseAssetMaster implements the asset_master task's parser.
func ParseAssetMaster(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	return parseSingleAsset(resp)
}

// ParseAssetAdapt implements the asset_adapt task's parser.
func ParseAssetAdapt(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	return parseSingleAsset(resp)
}

// AssetChannelBatchRow is one row of an asset_channel_batch result.
type AssetChannelBatchRow struct {
	FormatID string    `json:"formatId"`
	Copy     AssetCopy `json:"copy"`
}

// AssetChannelBatchResult is the parsed asset_channel_batch-task output.
type AssetChannelBatchResult struct {
	PlanID string                 `json:"planId"`
	Assets []AssetChannelBatchRow `json:"assets"`
}

// ParseAssetChannelBatch implements the asset_channel_batch task's parser.
func ParseAssetChannelBatch(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	rawAssets, _ := obj["assets"].([]any)
	result := AssetChannelBatchResult{
		PlanID: AsString(obj["plan_id"]),
		Assets: make([]AssetChannelBatchRow, 0, len(rawAssets)),
	}
	for _, raw := range rawAssets {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		copyRaw, _ := row["copy"].(map[string]any)
		result.Assets = append(result.Assets, AssetChannelBatchRow{
			FormatID: AsString(row["formatId"]),
			Copy:     parseAssetCopy(copyRaw),
		})
	}
	if len(result.Assets) == 0 {
		return nil, NewParseError(ReasonStructuredMissing, "assets array empty", resp.Text)
	}
	return result, nil
}

// ImagePromptResult is the parsed image_prompt-task output.
type ImagePromptResult struct {
	ImagePrompt string `json:"imagePrompt"`
	StyleNotes  string `json:"styleNotes"`
}

// ParseImagePrompt implements the image_prompt task's parser.
func ParseImagePrompt(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}
	prompt := AsString(obj["image_prompt"])
	if prompt == "" {
		return nil, NewParseError(ReasonStructuredMissing, "image_prompt is required", resp.Text)
	}
	return ImagePromptResult{ImagePrompt: prompt, StyleNotes: AsString(obj["style_notes"])}, nil
}

// ImageCaptionResult is the parsed image_caption-task output.
type ImageCaptionResult struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

const maxCaptionLen = 180

// ParseImageCaption implements the image_caption task's parser.
func ParseImageCaption(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}
	caption := AsString(obj["caption"])
	if len(caption) > maxCaptionLen {
		caption = caption[:maxCaptionLen]
	}
	return ImageCaptionResult{Caption: caption, Hashtags: AsStringSlice(obj["hashtags"])}, nil
}
