package task

import "testing"

func TestParseSuggest_FiltersMalformedRows(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{
		"autofill_candidates": []any{
			map[string]any{"fieldId": "roleTitle", "value": "Engineer", "confidence": 0.8},
			map[string]any{"value": "missing field id, dropped"},
			"not even an object",
		},
	}}
	result, perr := ParseSuggest(resp, TaskContext{})
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(SuggestResult)
	if len(out.Candidates) != 1 {
		t.Fatalf("expected 1 surviving candidate, got %d (%v)", len(out.Candidates), out.Candidates)
	}
	if out.Candidates[0].FieldID != "roleTitle" {
		t.Errorf("FieldID = %q", out.Candidates[0].FieldID)
	}
}

func TestParseSuggest_EmptyResponse(t *testing.T) {
	_, perr := ParseSuggest(ProviderResponse{}, TaskContext{})
	if perr == nil || perr.Reason != ReasonEmptyResponse {
		t.Fatalf("expected ReasonEmptyResponse, got %v", perr)
	}
}

func TestParseRefine_FallsBackToSnapshotForMissingFields(t *testing.T) {
	ctx := TaskContext{Job: JobSnapshot{Draft: map[string]any{
		"roleTitle": "Backend Engineer", "companyName": "Botson Labs",
	}}}
	resp := ProviderResponse{JSON: map[string]any{
		"refined_job": map[string]any{"roleTitle": "Senior Backend Engineer"},
		"summary":     "Tightened scope.",
		"analysis":    map[string]any{"improvement_score": float64(120), "original_score": float64(-10)},
	}}
	result, perr := ParseRefine(resp, ctx)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(RefineResult)
	if out.RefinedJob["roleTitle"] != "Senior Backend Engineer" {
		t.Errorf("roleTitle not overridden: %v", out.RefinedJob["roleTitle"])
	}
	if out.RefinedJob["companyName"] != "Botson Labs" {
		t.Errorf("companyName should fall back to snapshot: %v", out.RefinedJob["companyName"])
	}
	if out.Analysis.ImprovementScore != 100 {
		t.Errorf("ImprovementScore should clamp to 100, got %d", out.Analysis.ImprovementScore)
	}
	if out.Analysis.OriginalScore != 0 {
		t.Errorf("OriginalScore should clamp to 0, got %d", out.Analysis.OriginalScore)
	}
}

func TestParseRefine_MissingSummaryIsError(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{"refined_job": map[string]any{}}}
	_, perr := ParseRefine(resp, TaskContext{})
	if perr == nil || perr.Reason != ReasonStructuredMissing {
		t.Fatalf("expected ReasonStructuredMissing, got %v", perr)
	}
}

func TestParseChannels_DropsUnmappedAndDuplicates(t *testing.T) {
	ctx := TaskContext{SupportedChannels: []string{"LINKEDIN", "X"}}
	resp := ProviderResponse{JSON: map[string]any{
		"recommendations": []any{
			map[string]any{"channel": "linkedin", "reason": "tech fit", "expectedCPA": float64(40)},
			map[string]any{"channel": "LinkedIn", "reason": "duplicate, dropped"},
			map[string]any{"channel": "facebook", "reason": "not in allow-list, dropped"},
		},
	}}
	result, perr := ParseChannels(resp, ctx)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(ChannelsResult)
	if len(out.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation after de-dup, got %d", len(out.Recommendations))
	}
	if out.Recommendations[0].Channel != "LINKEDIN" {
		t.Errorf("channel should resolve to allow-list casing, got %q", out.Recommendations[0].Channel)
	}
	if out.Recommendations[0].ExpectedCPA == nil || *out.Recommendations[0].ExpectedCPA != 40 {
		t.Errorf("expectedCPA = %v", out.Recommendations[0].ExpectedCPA)
	}
}

func TestParseChannels_NoneMappedIsError(t *testing.T) {
	ctx := TaskContext{SupportedChannels: []string{"LINKEDIN"}}
	resp := ProviderResponse{JSON: map[string]any{
		"recommendations": []any{map[string]any{"channel": "facebook", "reason": "no match"}},
	}}
	_, perr := ParseChannels(resp, ctx)
	if perr == nil || perr.Reason != ReasonInvalidChannel {
		t.Fatalf("expected ReasonInvalidChannel, got %v", perr)
	}
}

func TestParseChannelPicker_ClampsAndTruncates(t *testing.T) {
	ctx := TaskContext{SupportedChannels: []string{"LINKEDIN"}}
	resp := ProviderResponse{JSON: map[string]any{
		"top_channel":        map[string]any{"id": "linkedin", "fit_score": float64(140), "reason_short": "strong tech audience"},
		"recommended_medium": "audio",
		"alternatives":       []any{"x", "tiktok", "facebook"},
		"compliance_flags":   []any{"a", "b", "c", "d", "e", "f"},
	}}
	result, perr := ParseChannelPicker(resp, ctx)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(ChannelPickerResult)
	if out.TopChannel.FitScore != 100 {
		t.Errorf("FitScore should clamp to 100, got %v", out.TopChannel.FitScore)
	}
	if out.RecommendedMedium != "" {
		t.Errorf("invalid medium should be dropped, got %q", out.RecommendedMedium)
	}
	if len(out.Alternatives) != 2 {
		t.Errorf("alternatives should cap at 2, got %d", len(out.Alternatives))
	}
	if len(out.ComplianceFlags) != 5 {
		t.Errorf("compliance flags should cap at 5, got %d", len(out.ComplianceFlags))
	}
}

func TestParseChannelPicker_UnmappedChannelIsError(t *testing.T) {
	ctx := TaskContext{SupportedChannels: []string{"LINKEDIN"}}
	resp := ProviderResponse{JSON: map[string]any{
		"top_channel": map[string]any{"id": "facebook", "fit_score": float64(50)},
	}}
	_, perr := ParseChannelPicker(resp, ctx)
	if perr == nil || perr.Reason != ReasonInvalidChannel {
		t.Fatalf("expected ReasonInvalidChannel, got %v", perr)
	}
}
