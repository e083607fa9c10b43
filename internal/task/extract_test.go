package task

import "testing"

func TestExtractJSON_Bare(t *testing.T) {
	got := ExtractJSON(`{"a":1,"b":"two"}`)
	if got != `{"a":1,"b":"two"}` {
		t.Errorf("ExtractJSON bare = %q", got)
	}
}

func TestExtractJSON_FencedWithProse(t *testing.T) {
	raw := "Sure, here you go:\n```json\n{\"a\":1}\n```\nLet me know if you need anything else."
	got := ExtractJSON(raw)
	if got != `{"a":1}` {
		t.Errorf("ExtractJSON fenced = %q", got)
	}
}

func TestExtractJSON_TrailingComma(t *testing.T) {
	got := ExtractJSON(`{"a":1,"b":[1,2,],}`)
	if got != `{"a":1,"b":[1,2]}` {
		t.Errorf("ExtractJSON trailing comma = %q", got)
	}
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	got := ExtractJSON(`prefix {"outer":{"inner":1}} suffix`)
	if got != `{"outer":{"inner":1}}` {
		t.Errorf("ExtractJSON nested = %q", got)
	}
}

func TestExtractJSON_BraceInsideString(t *testing.T) {
	got := ExtractJSON(`{"text":"a { b } c"}`)
	if got != `{"text":"a { b } c"}` {
		t.Errorf("ExtractJSON brace-in-string = %q", got)
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	if got := ExtractJSON("no json here"); got != "" {
		t.Errorf("ExtractJSON no object = %q, want empty", got)
	}
}

func TestParseJSONObject_Invalid(t *testing.T) {
	if _, ok := ParseJSONObject("not json at all"); ok {
		t.Error("ParseJSONObject should fail on non-JSON text")
	}
}

func TestResolveJSON_PrefersDecodedJSON(t *testing.T) {
	resp := ProviderResponse{Text: `{"a":2}`, JSON: map[string]any{"a": float64(1)}}
	obj, ok := ResolveJSON(resp)
	if !ok || obj["a"] != float64(1) {
		t.Errorf("ResolveJSON should prefer resp.JSON, got %v", obj)
	}
}

func TestResolveJSON_FallsBackToText(t *testing.T) {
	resp := ProviderResponse{Text: `{"a":3}`}
	obj, ok := ResolveJSON(resp)
	if !ok || obj["a"] != float64(3) {
		t.Errorf("ResolveJSON should extract from text, got %v", obj)
	}
}
