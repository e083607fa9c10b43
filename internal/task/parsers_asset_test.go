package task

import "testing"

func TestParseAssetMaster_Happy(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{
		"plan_id": "plan-1",
		"copy":    map[string]any{"headline": "Join our team", "body": "Great role", "cta": "Apply now"},
	}}
	result, perr := ParseAssetMaster(resp, TaskContext{})
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(AssetResult)
	if out.PlanID != "plan-1" || out.Copy.Headline != "Join our team" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestParseAssetAdapt_EmptyCopyIsError(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{"plan_id": "plan-1", "copy": map[string]any{}}}
	_, perr := ParseAssetAdapt(resp, TaskContext{})
	if perr == nil || perr.Reason != ReasonStructuredMissing {
		t.Fatalf("expected ReasonStructuredMissing, got %v", perr)
	}
}

func TestParseAssetChannelBatch_DropsMalformedRows(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{
		"plan_id": "plan-2",
		"assets": []any{
			map[string]any{"formatId": "feed", "copy": map[string]any{"headline": "a", "body": "b", "cta": "c"}},
			"not an object",
		},
	}}
	result, perr := ParseAssetChannelBatch(resp, TaskContext{})
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(AssetChannelBatchResult)
	if len(out.Assets) != 1 || out.Assets[0].FormatID != "feed" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestParseAssetChannelBatch_EmptyIsError(t *testing.T) {
	resp := ProviderResponse{JSON: map[string]any{"plan_id": "plan-2", "assets": []any{}}}
	_, perr := ParseAssetChannelBatch(resp, TaskContext{})
	if perr == nil || perr.Reason != ReasonStructuredMissing {
		t.Fatalf("expected ReasonStructuredMissing, got %v", perr)
	}
}

func TestParseImagePrompt_RequiresPrompt(t *testing.T) {
	_, perr := ParseImagePrompt(ProviderResponse{JSON: map[string]any{}}, TaskContext{})
	if perr == nil || perr.Reason != ReasonStructuredMissing {
		t.Fatalf("expected ReasonStructuredMissing, got %v", perr)
	}
}

func TestParseImageCaption_TruncatesLongCaption(t *testing.T) {
	long := make([]byte, maxCaptionLen+50)
	for i := range long {
		long[i] = 'a'
	}
	resp := ProviderResponse{JSON: map[string]any{"caption": string(long), "hashtags": []any{"#hiring"}}}
	result, perr := ParseImageCaption(resp, TaskContext{})
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	out := result.(ImageCaptionResult)
	if len(out.Caption) != maxCaptionLen {
		t.Errorf("caption length = %d, want %d", len(out.Caption), maxCaptionLen)
	}
}
