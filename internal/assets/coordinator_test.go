package assets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcore/internal/config"
	"jobcore/internal/jobstore"
	"jobcore/internal/orchestrator"
	"jobcore/internal/provider"
	"jobcore/internal/routing"
)

// canned maps a substring found in the outbound prompt to the Anthropic-wire
// JSON body the fake server replies with.
func fakeLLMServer(t *testing.T, canned map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body := string(buf)

		var text string
		for needle, response := range canned {
			if strings.Contains(body, needle) {
				text = response
				break
			}
		}
		if text == "" {
			t.Fatalf("fakeLLMServer: no canned response matched request body: %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		escaped := strings.ReplaceAll(text, `"`, `\"`)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` + escaped + `"}],"model":"claude-test","stop_reason":"end_turn"}`))
	}))
}

func newTestCoordinator(t *testing.T, serverURL string, parallelism int) (*Coordinator, *jobstore.Store) {
	t.Helper()
	store, err := jobstore.NewStore(filepath.Join(t.TempDir(), "jobcore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	llm := config.LLMConfig{
		DefaultProvider: config.ProviderAnthropic,
		Anthropic:       config.ProviderConfig{APIKey: "test-key", BaseURL: serverURL, Model: "claude-test"},
	}
	policy := routing.NewPolicy(llm, routing.Table{})
	registry := provider.NewRegistry(llm, time.Second)
	orch := orchestrator.New(policy, registry, config.LLMTimeouts{
		PerCallTimeout: time.Second,
		RetryBackoff:   []time.Duration{5 * time.Millisecond, 10 * time.Millisecond},
	})

	return New(store, orch, parallelism, nil, nil), store
}

func TestCoordinator_PlanAndLaunch_GeneratesAllAssetsToReady(t *testing.T) {
	server := fakeLLMServer(t, map[string]string{
		"asset_master": `{"plan_id":"job-1","copy":{"headline":"Join our team","body":"Great role","cta":"Apply now"}}`,
		"asset_adapt":  `{"plan_id":"job-1","copy":{"headline":"Join us","body":"Great feed post","cta":"Apply"}}`,
	})
	defer server.Close()

	coordinator, store := newTestCoordinator(t, server.URL, 4)

	_, err := store.PutDraft("job-1", map[string]any{"roleTitle": "Senior Backend Engineer"})
	require.NoError(t, err)
	draft, found, err := store.GetDraft("job-1")
	require.NoError(t, err)
	require.True(t, found)

	assets, err := coordinator.PlanAndLaunch(context.Background(), "job-1", []string{"LINKEDIN"}, draft)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	require.Eventually(t, func() bool {
		run, err := store.GetAssetRun("job-1")
		return err == nil && run != nil && run.Status == jobstore.AssetRunCompleted
	}, 2*time.Second, 10*time.Millisecond)

	run, err := store.GetAssetRun("job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, run.PlannedCount)
	assert.Equal(t, 2, run.CompletedCount)

	stored, err := store.GetAssets("job-1")
	require.NoError(t, err)
	for _, asset := range stored {
		assert.Equal(t, jobstore.AssetReady, asset.Status)
		assert.NotEmpty(t, asset.Content["headline"])
	}
}

func TestCoordinator_PlanAndLaunch_MasterFailureFailsSiblingAdapts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	coordinator, store := newTestCoordinator(t, server.URL, 4)

	_, err := store.PutDraft("job-2", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)
	draft, _, err := store.GetDraft("job-2")
	require.NoError(t, err)

	_, err = coordinator.PlanAndLaunch(context.Background(), "job-2", []string{"LINKEDIN"}, draft)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		run, err := store.GetAssetRun("job-2")
		return err == nil && run != nil && run.Status == jobstore.AssetRunCompleted
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := store.GetAssets("job-2")
	require.NoError(t, err)
	for _, asset := range stored {
		assert.Equal(t, jobstore.AssetFailed, asset.Status)
	}
}

func TestResolveFormatPlan_UnknownChannelDropped(t *testing.T) {
	rows := resolveFormatPlan([]string{"LINKEDIN", "NOT_A_CHANNEL"})
	assert.Len(t, rows, 2)
}
