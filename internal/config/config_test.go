package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	cfg, err := Load(filepath.Join(tempDir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "glm-4.7", cfg.LLM.ZAI.Model)
	assert.Equal(t, 4, cfg.Limits.AssetParallelism)
}

func TestLoad_ParsesFileAndAppliesEnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"llm": {"default_provider": "anthropic", "anthropic": {"model": "claude-sonnet-4-5-20250514"}},
		"limits": {"asset_parallelism": 8, "max_concurrent_api_calls": 8, "copilot_max_tool_steps": 4}
	}`), 0644))

	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, 8, cfg.Limits.AssetParallelism)

	provider, providerCfg, ok := cfg.LLM.DetectProvider()
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, provider)
	assert.Equal(t, "test-key", providerCfg.APIKey)
}

func TestLLMConfig_DetectProviderFallsBackToPriorityOrder(t *testing.T) {
	l := defaultLLMConfig()
	l.ZAI.APIKey = "zai-key"

	provider, cfg, ok := l.DetectProvider()
	require.True(t, ok)
	assert.Equal(t, ProviderZAI, provider)
	assert.Equal(t, "zai-key", cfg.APIKey)
}

func TestLLMConfig_DetectProviderNoKeysConfigured(t *testing.T) {
	l := defaultLLMConfig()
	_, _, ok := l.DetectProvider()
	assert.False(t, ok)
}

func TestConfig_ValidateRequiresProvider(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.Error(t, err)

	cfg.LLM.ZAI.APIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestLimits_Validate(t *testing.T) {
	l := DefaultLimits()
	assert.NoError(t, l.Validate())

	l.AssetParallelism = 0
	assert.Error(t, l.Validate())
}
