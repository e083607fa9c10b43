package task

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedJSONPattern strips a ```json ... ``` or bare ``` ... ``` wrapper,
// the shape every provider occasionally wraps a JSON answer in despite
// being told not to.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// trailingCommaPattern matches a comma followed by optional whitespace and
// a closing brace/bracket: the single tolerated malformation per spec §4.B.
var trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

// ExtractJSON finds the first balanced-brace JSON object in response,
// tolerating a markdown code fence wrapper and removing every trailing comma
// before a closing brace or bracket. Returns "" if no balanced object is found.
// Grounded on the teacher's own extractJSON best-effort extraction.
func ExtractJSON(response string) string {
	candidate := response
	if m := fencedJSONPattern.FindStringSubmatch(response); m != nil {
		candidate = m[1]
	}

	start := strings.Index(candidate, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(candidate); i++ {
		c := candidate[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return trailingCommaPattern.ReplaceAllString(candidate[start:i+1], "$1")
			}
		}
	}

	return ""
}

// ParseJSONObject extracts and unmarshals a JSON object from raw provider
// text into a generic map. Returns false if no usable object was found.
func ParseJSONObject(raw string) (map[string]any, bool) {
	jsonStr := ExtractJSON(raw)
	if jsonStr == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ResolveJSON returns resp.JSON if the adapter already decoded one, else
// falls back to best-effort extraction from resp.Text.
func ResolveJSON(resp ProviderResponse) (map[string]any, bool) {
	if resp.JSON != nil {
		return resp.JSON, true
	}
	return ParseJSONObject(resp.Text)
}
