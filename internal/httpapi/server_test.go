package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcore/internal/assets"
	"jobcore/internal/config"
	"jobcore/internal/copilot"
	"jobcore/internal/jobstore"
	"jobcore/internal/orchestrator"
	"jobcore/internal/provider"
	"jobcore/internal/routing"
)

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

func newTestServer(t *testing.T, llmURL string) (*httptest.Server, *jobstore.Store) {
	t.Helper()
	store, err := jobstore.NewStore(filepath.Join(t.TempDir(), "jobcore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	llm := config.LLMConfig{
		DefaultProvider: config.ProviderAnthropic,
		Anthropic:       config.ProviderConfig{APIKey: "test-key", BaseURL: llmURL, Model: "claude-test"},
	}
	policy := routing.NewPolicy(llm, routing.Table{})
	registry := provider.NewRegistry(llm, time.Second)
	orch := orchestrator.New(policy, registry, config.LLMTimeouts{
		PerCallTimeout: time.Second,
		RetryBackoff:   []time.Duration{5 * time.Millisecond, 10 * time.Millisecond},
	})

	coordinator := assets.New(store, orch, 4, nil, nil)
	agent := copilot.New(store, orch, 4)

	router := NewRouter(Dependencies{Store: store, Orchestrator: orch, Assets: coordinator, Copilot: agent})
	return httptest.NewServer(router), store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHTTPAPI_CreateAndGetJob_RoundTrips(t *testing.T) {
	server, _ := newTestServer(t, "http://unused")
	defer server.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/jobs", map[string]any{
		"draft": map[string]any{"roleTitle": "Senior Backend Engineer", "companyName": "Botson Labs"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	decode(t, resp, &created)
	jobID, _ := created["jobId"].(string)
	require.NotEmpty(t, jobID)

	getResp := doJSON(t, http.MethodGet, server.URL+"/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var job map[string]any
	decode(t, getResp, &job)
	draft, _ := job["draft"].(map[string]any)
	assert.Equal(t, "Senior Backend Engineer", draft["roleTitle"])
}

func TestHTTPAPI_GetJob_MissingReturns404(t *testing.T) {
	server, _ := newTestServer(t, "http://unused")
	defer server.Close()

	resp := doJSON(t, http.MethodGet, server.URL+"/jobs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPAPI_Refine_HappyPath(t *testing.T) {
	llm := fakeLLMServer(t, map[string]string{
		"refine": `{"refined_job":{"roleTitle":"Senior Backend Engineer"},"summary":"Improved clarity and structure.","analysis":{"improvement_score":90,"original_score":60,"impact_summary":"Clearer scope","key_improvements":["tightened duties"]}}`,
	})
	defer llm.Close()
	server, store := newTestServer(t, llm.URL)
	defer server.Close()

	_, err := store.PutDraft("job-1", map[string]any{
		"roleTitle": "Senior Backend Engineer", "companyName": "Botson Labs", "location": "Tel Aviv, Israel",
		"seniorityLevel": "mid", "employmentType": "full_time", "jobDescription": "Lead the team.",
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-1/refine", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body refineResponse
	decode(t, resp, &body)
	require.NotNil(t, body.Metadata)
	assert.Equal(t, 90, body.Metadata.ImprovementScore)
	assert.NotEmpty(t, body.Summary)
}

func TestHTTPAPI_FinalizeWithoutRequiredFields_Returns409(t *testing.T) {
	server, store := newTestServer(t, "http://unused")
	defer server.Close()

	_, err := store.PutDraft("job-2", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-2/finalize", map[string]any{
		"finalJob": map[string]any{"roleTitle": "x"},
		"source":   "edited",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHTTPAPI_GenerateAssetsWithoutFinalization_Returns409(t *testing.T) {
	server, store := newTestServer(t, "http://unused")
	defer server.Close()

	_, err := store.PutDraft("job-3", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-3/assets", map[string]any{
		"channelIds": []string{"LINKEDIN"},
		"source":     "edited",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// TestHTTPAPI_FinalizeThenGenerateAssets_PlannedCountMatchesStaticMap covers
// S3: finalize computes channels, selecting both returned channels plans
// plannedCount=4 (LinkedIn's two formats + X's two formats).
func TestHTTPAPI_FinalizeThenGenerateAssets_PlannedCountMatchesStaticMap(t *testing.T) {
	llm := fakeLLMServer(t, map[string]string{
		"channels":     `{"recommendations":[{"channel":"LINKEDIN","reason":"Senior tech fit","expectedCPA":42},{"channel":"X","reason":"Tech reach"}]}`,
		"asset_master": `{"plan_id":"job-4","copy":{"headline":"Join our team","body":"Great role","cta":"Apply now"}}`,
		"asset_adapt":  `{"plan_id":"job-4","copy":{"headline":"Join us","body":"Great post","cta":"Apply"}}`,
	})
	defer llm.Close()
	server, store := newTestServer(t, llm.URL)
	defer server.Close()

	_, err := store.PutDraft("job-4", map[string]any{
		"roleTitle": "Senior Backend Engineer", "companyName": "Botson Labs", "location": "Tel Aviv, Israel",
		"seniorityLevel": "mid", "employmentType": "full_time", "jobDescription": "Lead the team.",
	})
	require.NoError(t, err)

	finalizeResp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-4/finalize", map[string]any{
		"finalJob": map[string]any{
			"roleTitle": "Senior Backend Engineer", "companyName": "Botson Labs", "location": "Tel Aviv, Israel",
			"seniorityLevel": "mid", "employmentType": "full_time", "jobDescription": "Lead the team.",
		},
		"source": "refined",
	})
	require.Equal(t, http.StatusOK, finalizeResp.StatusCode)
	var finalized finalizeResponse
	decode(t, finalizeResp, &finalized)
	require.Len(t, finalized.ChannelRecommendations, 2)

	assetsResp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-4/assets", map[string]any{
		"channelIds": []string{"LINKEDIN", "X"},
		"source":     "refined",
	})
	require.Equal(t, http.StatusAccepted, assetsResp.StatusCode)
	var planned assetsResponse
	decode(t, assetsResp, &planned)
	assert.Equal(t, 4, planned.Run.PlannedCount)

	require.Eventually(t, func() bool {
		run, err := store.GetAssetRun("job-4")
		return err == nil && run != nil && run.Status == jobstore.AssetRunCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHTTPAPI_GenerateAssets_UnknownChannelReturns400(t *testing.T) {
	server, store := newTestServer(t, "http://unused")
	defer server.Close()

	_, err := store.PutDraft("job-5", map[string]any{
		"roleTitle": "x", "companyName": "y", "location": "z",
		"seniorityLevel": "mid", "employmentType": "full_time", "jobDescription": "d",
	})
	require.NoError(t, err)
	draft, _, err := store.GetDraft("job-5")
	require.NoError(t, err)
	_, err = store.Finalize("job-5", draft, jobstore.SourceEdited)
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-5/assets", map[string]any{
		"channelIds": []string{"NOT_A_CHANNEL"},
		"source":     "edited",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPAPI_Copilot_PostThenGetConversation(t *testing.T) {
	llm := fakeLLMServer(t, map[string]string{
		"copilot": `{"type":"final","message":"Updated seniority to senior.","actions":[{"type":"field_update","input":{"fieldId":"seniorityLevel","value":"senior"}}]}`,
	})
	defer llm.Close()
	server, store := newTestServer(t, llm.URL)
	defer server.Close()

	_, err := store.PutDraft("job-6", map[string]any{"roleTitle": "x"})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, server.URL+"/jobs/job-6/copilot", map[string]any{
		"message":         "Set seniority to senior",
		"stage":           "wizard",
		"clientMessageId": "c-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body copilotResponse
	decode(t, resp, &body)
	require.Len(t, body.Actions, 1)
	assert.Equal(t, "senior", body.UpdatedJobSnapshot["seniorityLevel"])

	getResp := doJSON(t, http.MethodGet, server.URL+"/jobs/job-6/copilot", nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var conv map[string]any
	decode(t, getResp, &conv)
	messages, _ := conv["messages"].([]any)
	assert.Len(t, messages, 2)
}
