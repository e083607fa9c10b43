package task

// VideoConfigResult is the parsed video_config-task output.
type VideoConfigResult struct {
	DurationSeconds int    `json:"durationSeconds"`
	ShotCount       int    `json:"shotCount"`
	Pacing          string `json:"pacing"`
	Tone            string `json:"tone"`
}

var validPacing = map[string]bool{"fast": true, "moderate": true, "slow": true}

// ParseVideoConfig implements the video_config task's parser.
func ParseVideoConfig(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	duration, _ := AsFloat(obj["duration_seconds"])
	shots, _ := AsFloat(obj["shot_count"])
	pacing := AsString(obj["pacing"])
	if !validPacing[pacing] {
		pacing = "moderate"
	}

	return VideoConfigResult{
		DurationSeconds: int(ClampFloat(duration, 15, 60)),
		ShotCount:       int(ClampFloat(shots, 3, 8)),
		Pacing:          pacing,
		Tone:            AsString(obj["tone"]),
	}, nil
}

// VideoShot is one storyboard entry.
type VideoShot struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	OnScreen    string `json:"onScreen,omitempty"`
}

// VideoStoryboardResult is the parsed video_storyboard-task output.
type VideoStoryboardResult struct {
	Shots []VideoShot `json:"shots"`
}

// ParseVideoStoryboard implements the video_storyboard task's parser.
func ParseVideoStoryboard(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	rawShots, _ := obj["shots"].([]any)
	shots := make([]VideoShot, 0, len(rawShots))
	for i, raw := range rawShots {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		shots = append(shots, VideoShot{
			Index:       i,
			Description: AsString(row["description"]),
			OnScreen:    AsString(row["on_screen"]),
		})
	}
	if len(shots) == 0 {
		return nil, NewParseError(ReasonStructuredMissing, "shots array empty", resp.Text)
	}
	return VideoStoryboardResult{Shots: shots}, nil
}

// VideoCaptionResult is the parsed video_caption-task output. Shares the
// image_caption shape (same contract) but kept as a distinct type so the
// orchestrator's result switch stays exhaustive per task name.
type VideoCaptionResult struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// ParseVideoCaption implements the video_caption task's parser.
func ParseVideoCaption(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
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
	return VideoCaptionResult{Caption: caption, Hashtags: AsStringSlice(obj["hashtags"])}, nil
}

// VideoComplianceResult is the parsed video_compliance-task output.
type VideoComplianceResult struct {
	Approved        bool     `json:"approved"`
	ComplianceFlags []string `json:"complianceFlags"`
}

// ParseVideoCompliance implements the video_compliance task's parser.
func ParseVideoCompliance(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	approved, _ := obj["approved"].(bool)
	flags := AsStringSlice(obj["compliance_flags"])
	if len(flags) > 5 {
		flags = flags[:5]
	}
	return VideoComplianceResult{Approved: approved, ComplianceFlags: flags}, nil
}
