package task

import "testing"

func TestNormalizeChannel(t *testing.T) {
	cases := map[string]string{
		"LinkedIn":     "linkedin",
		" X ":          "x",
		"Tik-Tok!!":    "tik_tok",
		"  ":           "",
		"Indeed (Job)": "indeed_job",
	}
	for in, want := range cases {
		if got := NormalizeChannel(in); got != want {
			t.Errorf("NormalizeChannel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapToAllowList(t *testing.T) {
	allowed := []string{"LINKEDIN", "X", "TIKTOK"}

	if got := MapToAllowList("linkedin", allowed); got != "LINKEDIN" {
		t.Errorf("MapToAllowList(linkedin) = %q, want LINKEDIN", got)
	}
	if got := MapToAllowList("Tik Tok", allowed); got != "" {
		t.Errorf("MapToAllowList(Tik Tok) = %q, want empty (tik_tok does not match tiktok)", got)
	}
	if got := MapToAllowList("facebook", allowed); got != "" {
		t.Errorf("MapToAllowList(facebook) = %q, want empty", got)
	}
}

func TestClampIntAndFloat(t *testing.T) {
	if got := ClampInt(150, 0, 100); got != 100 {
		t.Errorf("ClampInt(150, 0, 100) = %d, want 100", got)
	}
	if got := ClampInt(-5, 0, 100); got != 0 {
		t.Errorf("ClampInt(-5, 0, 100) = %d, want 0", got)
	}
	if got := ClampFloat(0.5, 0, 1); got != 0.5 {
		t.Errorf("ClampFloat(0.5, 0, 1) = %v, want 0.5", got)
	}
}

func TestAsFloat(t *testing.T) {
	if v, ok := AsFloat(float64(42)); !ok || v != 42 {
		t.Errorf("AsFloat(float64(42)) = %v, %v", v, ok)
	}
	if _, ok := AsFloat("42"); ok {
		t.Error("AsFloat(\"42\") should not be ok, strings are not accepted")
	}
}

func TestAsStringSlice(t *testing.T) {
	in := []any{"a", "", "  b  ", 5, "c"}
	got := AsStringSlice(in)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("AsStringSlice length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AsStringSlice[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
