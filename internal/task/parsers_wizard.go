package task

// AutofillCandidate is one suggest-task result row.
type AutofillCandidate struct {
	FieldID    string  `json:"fieldId"`
	Value      string  `json:"value"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// SuggestResult is the parsed suggest-task output.
type SuggestResult struct {
	Candidates []AutofillCandidate `json:"autofillCandidates"`
}

// ParseSuggest implements the suggest task's parser.
func ParseSuggest(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	rawCandidates, _ := obj["autofill_candidates"].([]any)
	result := SuggestResult{Candidates: make([]AutofillCandidate, 0, len(rawCandidates))}

	allowed := map[string]bool{}
	for _, id := range ctx.VisibleFieldIds {
		allowed[id] = true
	}

	for _, raw := range rawCandidates {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fieldID := AsString(row["fieldId"])
		if fieldID == "" {
			continue
		}
		confidence, _ := AsFloat(row["confidence"])
		result.Candidates = append(result.Candidates, AutofillCandidate{
			FieldID:    fieldID,
			Value:      AsString(row["value"]),
			Rationale:  AsString(row["rationale"]),
			Confidence: ClampFloat(confidence, 0, 1),
			Source:     AsString(row["source"]),
		})
	}

	return result, nil
}

// RefineAnalysis is the improvement-analysis block of a refine result.
type RefineAnalysis struct {
	ImprovementScore int      `json:"improvementScore"`
	OriginalScore    int      `json:"originalScore"`
	ImpactSummary    string   `json:"impactSummary"`
	KeyImprovements  []string `json:"keyImprovements"`
}

// RefineResult is the parsed refine-task output.
type RefineResult struct {
	RefinedJob map[string]any  `json:"refinedJob"`
	Summary    string          `json:"summary"`
	Analysis   RefineAnalysis  `json:"analysis"`
}

// ParseRefine implements the refine task's parser. Missing refined_job
// fields fall back to the caller's jobSnapshot per spec §4.A.
func ParseRefine(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	refinedRaw, _ := obj["refined_job"].(map[string]any)
	refined := map[string]any{}
	for k, v := range ctx.Job.Draft {
		refined[k] = v
	}
	for k, v := range refinedRaw {
		refined[k] = v
	}

	summary := AsString(obj["summary"])
	if summary == "" {
		return nil, NewParseError(ReasonStructuredMissing, "summary is required", resp.Text)
	}

	analysisRaw, _ := obj["analysis"].(map[string]any)
	improvement, _ := AsFloat(analysisRaw["improvement_score"])
	original, _ := AsFloat(analysisRaw["original_score"])

	return RefineResult{
		RefinedJob: refined,
		Summary:    summary,
		Analysis: RefineAnalysis{
			ImprovementScore: int(ClampFloat(improvement, 0, 100)),
			OriginalScore:    int(ClampFloat(original, 0, 100)),
			ImpactSummary:    AsString(analysisRaw["impact_summary"]),
			KeyImprovements:  AsStringSlice(analysisRaw["key_improvements"]),
		},
	}, nil
}

// ChannelRecommendation is one channels-task result row.
type ChannelRecommendation struct {
	Channel     string   `json:"channel"`
	Reason      string   `json:"reason"`
	ExpectedCPA *float64 `json:"expectedCPA,omitempty"`
}

// ChannelsResult is the parsed channels-task output.
type ChannelsResult struct {
	Recommendations []ChannelRecommendation `json:"recommendations"`
}

// ParseChannels implements the channels task's parser: normalizes channel
// ids, maps them against the caller's allow-list, and drops duplicates and
// unmapped entries silently per spec §4.B/§3.
func ParseChannels(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	rawRecs, _ := obj["recommendations"].([]any)
	seen := map[string]bool{}
	result := ChannelsResult{Recommendations: make([]ChannelRecommendation, 0, len(rawRecs))}

	for _, raw := range rawRecs {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		mapped := MapToAllowList(AsString(row["channel"]), ctx.SupportedChannels)
		if mapped == "" || seen[mapped] {
			continue
		}
		seen[mapped] = true

		rec := ChannelRecommendation{Channel: mapped, Reason: AsString(row["reason"])}
		if cpa, ok := AsFloat(row["expectedCPA"]); ok && cpa >= 0 {
			rec.ExpectedCPA = &cpa
		}
		result.Recommendations = append(result.Recommendations, rec)
	}

	if len(result.Recommendations) == 0 {
		return nil, NewParseError(ReasonInvalidChannel, "no recommendations mapped to the supported channel allow-list", resp.Text)
	}

	return result, nil
}

// TopChannel is the channel_picker task's selected channel.
type TopChannel struct {
	ID          string  `json:"id"`
	FitScore    float64 `json:"fitScore"`
	ReasonShort string  `json:"reasonShort"`
}

// ChannelPickerResult is the parsed channel_picker-task output.
type ChannelPickerResult struct {
	TopChannel         TopChannel `json:"topChannel"`
	RecommendedMedium  string     `json:"recommendedMedium"`
	CopyHint           string     `json:"copyHint"`
	Alternatives       []string   `json:"alternatives"`
	ComplianceFlags    []string   `json:"complianceFlags"`
}

var validMedia = map[string]bool{"video": true, "image": true, "text": true}

// ParseChannelPicker implements the channel_picker task's parser.
func ParseChannelPicker(resp ProviderResponse, ctx TaskContext) (any, *ParseError) {
	if resp.Text == "" && resp.JSON == nil {
		return nil, NewParseError(ReasonEmptyResponse, "empty provider response", "")
	}
	obj, ok := ResolveJSON(resp)
	if !ok {
		return nil, NewParseError(ReasonStructuredMissing, "no JSON object found in response", resp.Text)
	}

	topRaw, _ := obj["top_channel"].(map[string]any)
	channelID := MapToAllowList(AsString(topRaw["id"]), ctx.SupportedChannels)
	if channelID == "" {
		return nil, NewParseError(ReasonInvalidChannel, "top_channel.id not in supported channel allow-list", resp.Text)
	}

	fitScore, ok := AsFloat(topRaw["fit_score"])
	if !ok {
		return nil, NewParseError(ReasonInvalidFitScore, "top_channel.fit_score missing or non-numeric", resp.Text)
	}
	fitScore = ClampFloat(fitScore, 0, 100)

	medium := AsString(obj["recommended_medium"])
	if !validMedia[medium] {
		medium = ""
	}

	alternatives := AsStringSlice(obj["alternatives"])
	if len(alternatives) > 2 {
		alternatives = alternatives[:2]
	}
	flags := AsStringSlice(obj["compliance_flags"])
	if len(flags) > 5 {
		flags = flags[:5]
	}

	return ChannelPickerResult{
		TopChannel: TopChannel{
			ID:          channelID,
			FitScore:    fitScore,
			ReasonShort: AsString(topRaw["reason_short"]),
		},
		RecommendedMedium: medium,
		CopyHint:          AsString(obj["copy_hint"]),
		Alternatives:      alternatives,
		ComplianceFlags:   flags,
	}, nil
}
