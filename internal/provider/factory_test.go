package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcore/internal/config"
)

func TestNewAdapter_BuildsEveryKnownProvider(t *testing.T) {
	for _, p := range config.ValidProviders {
		cfg := config.ProviderConfig{APIKey: "test-key"}
		adapter, err := NewAdapter(p, cfg, time.Second)
		require.NoError(t, err, p)
		assert.Equal(t, string(p), adapter.Name())
	}
}

func TestNewAdapter_UnknownProvider(t *testing.T) {
	_, err := NewAdapter(config.Provider("unknown"), config.ProviderConfig{}, time.Second)
	require.Error(t, err)
}

func TestRegistry_DefaultUsesDetectProvider(t *testing.T) {
	llm := config.LLMConfig{
		OpenAI: config.ProviderConfig{APIKey: "key-openai"},
	}
	reg := NewRegistry(llm, time.Second)

	adapter, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "openai", adapter.Name())
}

func TestRegistry_Adapter_CachesInstance(t *testing.T) {
	llm := config.LLMConfig{Anthropic: config.ProviderConfig{APIKey: "key"}}
	reg := NewRegistry(llm, time.Second)

	a1, err := reg.Adapter(config.ProviderAnthropic)
	require.NoError(t, err)
	a2, err := reg.Adapter(config.ProviderAnthropic)
	require.NoError(t, err)
	assert.Same(t, a1, a2)
}

func TestRegistry_Default_NoProviderConfigured(t *testing.T) {
	reg := NewRegistry(config.LLMConfig{}, time.Second)
	_, err := reg.Default()
	require.Error(t, err)
}
