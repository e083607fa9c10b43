package routing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcore/internal/config"
)

func TestPolicy_Select_UsesOverrideFirst(t *testing.T) {
	llm := config.LLMConfig{Anthropic: config.ProviderConfig{APIKey: "key", Model: "claude-default"}}
	table := Table{Overrides: map[string]Override{
		"refine": {Provider: "openai", Model: "gpt-custom"},
	}}
	policy := NewPolicy(llm, table)

	provider, model := policy.Select("refine")
	assert.Equal(t, config.ProviderOpenAI, provider)
	assert.Equal(t, "gpt-custom", model)
}

func TestPolicy_Select_LatencySensitiveTaskPrefersFastProvider(t *testing.T) {
	llm := config.LLMConfig{
		Anthropic: config.ProviderConfig{APIKey: "key", Model: "claude-default"},
		Gemini:    config.ProviderConfig{APIKey: "key", Model: "gemini-default"},
	}
	policy := NewPolicy(llm, Table{})

	provider, model := policy.Select("suggest")
	assert.Equal(t, config.ProviderGemini, provider)
	assert.Equal(t, "gemini-default", model)
}

func TestPolicy_Select_FallsBackToDetectProvider(t *testing.T) {
	llm := config.LLMConfig{OpenAI: config.ProviderConfig{APIKey: "key", Model: "gpt-default"}}
	policy := NewPolicy(llm, Table{})

	provider, model := policy.Select("refine")
	assert.Equal(t, config.ProviderOpenAI, provider)
	assert.Equal(t, "gpt-default", model)
}

func TestPolicy_Select_NoProviderConfigured(t *testing.T) {
	policy := NewPolicy(config.LLMConfig{}, Table{})
	provider, model := policy.Select("refine")
	assert.Equal(t, config.Provider(""), provider)
	assert.Equal(t, "", model)
}

func TestLoadTable_MissingFileReturnsEmpty(t *testing.T) {
	table, err := LoadTable(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Empty(t, table.Overrides)
}

func TestLoadTable_ParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.toml")
	content := `
[overrides.refine]
provider = "anthropic"
model = "claude-sonnet-4-5-20250514"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	require.Contains(t, table.Overrides, "refine")
	assert.Equal(t, "anthropic", table.Overrides["refine"].Provider)
}
