package copilot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
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

func newTestAgent(t *testing.T, responses []string) (*Agent, *jobstore.Store) {
	t.Helper()
	var callIndex int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		_ = string(buf)

		idx := int(atomic.AddInt32(&callIndex, 1)) - 1
		text := responses[idx]
		escaped := strings.ReplaceAll(text, `"`, `\"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` + escaped + `"}],"model":"claude-test","stop_reason":"end_turn"}`))
	}))
	t.Cleanup(server.Close)

	store, err := jobstore.NewStore(filepath.Join(t.TempDir(), "jobcore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	llm := config.LLMConfig{
		DefaultProvider: config.ProviderAnthropic,
		Anthropic:       config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "claude-test"},
	}
	policy := routing.NewPolicy(llm, routing.Table{})
	registry := provider.NewRegistry(llm, time.Second)
	orch := orchestrator.New(policy, registry, config.LLMTimeouts{
		PerCallTimeout: time.Second,
		RetryBackoff:   []time.Duration{5 * time.Millisecond},
	})

	return New(store, orch, 4), store
}

func TestAgent_HandleTurn_ToolCallThenFinal(t *testing.T) {
	agent, store := newTestAgent(t, []string{
		`{"type":"tool_call","tool":"field_update","input":{"fieldId":"seniorityLevel","value":"senior"}}`,
		`{"type":"final","message":"Updated seniority to senior.","actions":[{"type":"field_update","input":{"fieldId":"seniorityLevel","value":"senior"}}]}`,
	})

	_, err := store.PutDraft("job-1", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)

	result, err := agent.HandleTurn(context.Background(), "job-1", "wizard", "Set seniority to senior", "c-1")
	require.NoError(t, err)
	require.NotNil(t, result.UpdatedDraft)
	assert.Equal(t, "senior", result.UpdatedDraft.Scalars[jobstore.FieldSeniorityLevel])
	require.Len(t, result.Actions, 1)

	draft, found, err := store.GetDraft("job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "senior", draft.Scalars[jobstore.FieldSeniorityLevel])

	conversation, err := store.GetConversation("job-1")
	require.NoError(t, err)
	require.Len(t, conversation, 3) // user, tool outcome, assistant final
}

func TestAgent_HandleTurn_LoopExhaustionStopsAtMaxSteps(t *testing.T) {
	responses := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		responses = append(responses, `{"type":"tool_call","tool":"field_update","input":{"fieldId":"seniorityLevel","value":"senior"}}`)
	}
	agent, store := newTestAgent(t, responses)

	_, err := store.PutDraft("job-2", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)

	result, err := agent.HandleTurn(context.Background(), "job-2", "wizard", "Keep going", "")
	require.NoError(t, err)
	require.NotEmpty(t, result.Messages)
	last := result.Messages[len(result.Messages)-1]
	assert.Equal(t, "assistant", last.Role)
	assert.Contains(t, last.Content, "ran out of steps")
}

func TestAgent_HandleTurn_DedupesUserMessageByClientMessageID(t *testing.T) {
	agent, store := newTestAgent(t, []string{
		`{"type":"final","message":"Got it.","actions":[]}`,
	})

	_, err := store.PutDraft("job-3", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)

	_, err = agent.HandleTurn(context.Background(), "job-3", "wizard", "hello", "dup-1")
	require.NoError(t, err)

	conversation, err := store.GetConversation("job-3")
	require.NoError(t, err)
	userCount := 0
	for _, msg := range conversation {
		if msg.Role == "user" {
			userCount++
		}
	}
	assert.Equal(t, 1, userCount)
}
