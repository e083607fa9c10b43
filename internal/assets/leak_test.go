package assets

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"jobcore/internal/jobstore"
	"jobcore/internal/provider"
)

// fakeImageGen is a trivial ImageGenerator for exercising RequestHeroImage
// without a real Gemini dependency.
type fakeImageGen struct{}

func (fakeImageGen) GenerateImage(ctx context.Context, prompt string) (provider.MediaResult, error) {
	return provider.MediaResult{Bytes: []byte("fake-image"), MimeType: "image/png"}, nil
}

// TestCoordinator_PlanAndLaunch_NoGoroutineLeak drives the errgroup fan-out
// across two channels to completion and verifies no goroutine it spawned
// (per-channel workers, per-asset master/adapt calls) is still running once
// the asset run reports completed.
func TestCoordinator_PlanAndLaunch_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"), goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"))

	server := fakeLLMServer(t, map[string]string{
		"asset_master": `{"plan_id":"job-leak","copy":{"headline":"Join our team","body":"Great role","cta":"Apply now"}}`,
		"asset_adapt":  `{"plan_id":"job-leak","copy":{"headline":"Join us","body":"Great feed post","cta":"Apply"}}`,
	})
	defer server.Close()

	coordinator, store := newTestCoordinator(t, server.URL, 4)

	_, err := store.PutDraft("job-leak", map[string]any{"roleTitle": "Senior Backend Engineer"})
	require.NoError(t, err)
	draft, found, err := store.GetDraft("job-leak")
	require.NoError(t, err)
	require.True(t, found)

	_, err = coordinator.PlanAndLaunch(context.Background(), "job-leak", []string{"LINKEDIN", "X"}, draft)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		run, err := store.GetAssetRun("job-leak")
		return err == nil && run != nil && run.Status == jobstore.AssetRunCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

// TestCoordinator_RequestHeroImage_ConcurrentCallersNoLeak drives several
// concurrent RequestHeroImage callers through the singleflight path and
// checks none of the joined-but-not-leader goroutines are left behind.
func TestCoordinator_RequestHeroImage_ConcurrentCallersNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"), goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"))

	server := fakeLLMServer(t, map[string]string{
		"image_prompt":  `{"image_prompt":"A bright modern office","style_notes":"clean"}`,
		"image_caption": `{"caption":"Join our growing team","hashtags":["#hiring"]}`,
	})
	defer server.Close()

	coordinator, store := newTestCoordinator(t, server.URL, 4)
	coordinator.imageGen = fakeImageGen{}

	_, err := store.PutDraft("job-hero", map[string]any{"roleTitle": "Engineer"})
	require.NoError(t, err)
	draft, _, err := store.GetDraft("job-hero")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = coordinator.RequestHeroImage(context.Background(), "job-hero", draft, false)
		}()
	}
	wg.Wait()
}
