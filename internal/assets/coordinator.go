package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"jobcore/internal/jobstore"
	"jobcore/internal/logging"
	"jobcore/internal/orchestrator"
	"jobcore/internal/provider"
	"jobcore/internal/task"
)

// ImageGenerator renders a hero image from a text-to-image prompt. Satisfied
// by provider.GeminiImageAdapter; an interface here keeps the coordinator
// decoupled from a specific media provider (spec names no provider).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (provider.MediaResult, error)
}

// VideoGenerator renders a video from a text prompt. Satisfied by
// provider.GeminiVideoAdapter.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string) (provider.MediaResult, error)
}

// Coordinator implements the Asset Coordinator (spec §4.G): it expands
// selected channels into a format plan, persists it, and drives generation
// of every planned asset plus the job's hero image and video concurrently.
type Coordinator struct {
	store        *jobstore.Store
	orchestrator *orchestrator.Orchestrator
	parallelism  int

	imageGen ImageGenerator
	videoGen VideoGenerator

	jobLocksMu sync.Mutex
	jobLocks   map[string]*sync.Mutex

	heroFlight  singleflight.Group
	videoFlight singleflight.Group
}

// New builds a Coordinator. imageGen/videoGen may be nil; hero-image/video
// requests then fail with a FAILED record explaining media generation is
// not configured, rather than panicking.
func New(store *jobstore.Store, orch *orchestrator.Orchestrator, parallelism int, imageGen ImageGenerator, videoGen VideoGenerator) *Coordinator {
	if parallelism < 1 {
		parallelism = 4
	}
	return &Coordinator{
		store:        store,
		orchestrator: orch,
		parallelism:  parallelism,
		imageGen:     imageGen,
		videoGen:     videoGen,
		jobLocks:     make(map[string]*sync.Mutex),
	}
}

// jobMutex returns the per-job mutex serializing PlanAssetRun+launch for
// jobID, creating it on first use (spec §4.G concurrency guarantees).
func (c *Coordinator) jobMutex(jobID string) *sync.Mutex {
	c.jobLocksMu.Lock()
	defer c.jobLocksMu.Unlock()
	mu, ok := c.jobLocks[jobID]
	if !ok {
		mu = &sync.Mutex{}
		c.jobLocks[jobID] = mu
	}
	return mu
}

// PlanAndLaunch resolves the format plan for selectedChannels, persists it,
// and launches generation in the background. It returns as soon as the plan
// is persisted; callers poll the store for progress (spec §4.G steps 1-3).
func (c *Coordinator) PlanAndLaunch(ctx context.Context, jobID string, selectedChannels []string, finalJob jobstore.Draft) ([]jobstore.Asset, error) {
	rows := resolveFormatPlan(selectedChannels)
	if len(rows) == 0 {
		return nil, fmt.Errorf("assets: no asset rows resolved for channels %v", selectedChannels)
	}

	mu := c.jobMutex(jobID)
	mu.Lock()
	defer mu.Unlock()

	assets, err := c.store.PlanAssetRun(jobID, rows)
	if err != nil {
		return nil, fmt.Errorf("assets: plan and launch: %w", err)
	}
	for _, asset := range assets {
		logging.AuditWithJob(jobID).AssetRun(logging.AuditAssetPlanned, jobID, asset.AssetID, 0, true, "")
	}

	go c.generateAll(context.Background(), jobID, assets, finalJob)

	return assets, nil
}

// generateAll fans out one worker per channel group, bounded by
// c.parallelism. Individual asset tasks are independent of the per-job
// mutex from here on (spec §4.G concurrency guarantees).
func (c *Coordinator) generateAll(ctx context.Context, jobID string, assets []jobstore.Asset, finalJob jobstore.Draft) {
	groups := groupByChannel(assets)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)

	for _, group := range groups {
		group := group
		g.Go(func() error {
			c.generateChannelGroup(gctx, jobID, group, finalJob)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.AssetsError("job=%s: asset generation group returned error: %v", jobID, err)
	}
}

func groupByChannel(assets []jobstore.Asset) [][]jobstore.Asset {
	order := make([]string, 0)
	byChannel := make(map[string][]jobstore.Asset)
	for _, asset := range assets {
		if _, ok := byChannel[asset.ChannelID]; !ok {
			order = append(order, asset.ChannelID)
		}
		byChannel[asset.ChannelID] = append(byChannel[asset.ChannelID], asset)
	}
	groups := make([][]jobstore.Asset, 0, len(order))
	for _, channelID := range order {
		groups = append(groups, byChannel[channelID])
	}
	return groups
}

// generateChannelGroup runs asset_master on the first row of a channel's
// format plan, then fans the remaining rows out as asset_adapt calls seeded
// with the master's copy (spec §4.G step 3).
func (c *Coordinator) generateChannelGroup(ctx context.Context, jobID string, group []jobstore.Asset, finalJob jobstore.Draft) {
	if len(group) == 0 {
		return
	}

	master := group[0]
	masterCopy, ok := c.runAssetTask(ctx, jobID, "asset_master", master, "", finalJob)
	if !ok {
		for _, sibling := range group[1:] {
			if err := c.store.UpsertAsset(jobID, sibling.AssetID, jobstore.AssetFailed,
				map[string]any{"error": "master asset failed, adapt skipped"}, ""); err != nil {
				logging.AssetsError("job=%s asset=%s: %v", jobID, sibling.AssetID, err)
			}
		}
		return
	}
	if len(group) == 1 {
		return
	}

	masterJSON, err := json.Marshal(masterCopy)
	if err != nil {
		logging.AssetsError("job=%s: encode master copy: %v", jobID, err)
		masterJSON = []byte("{}")
	}

	var wg sync.WaitGroup
	for _, adaptAsset := range group[1:] {
		adaptAsset := adaptAsset
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.runAssetTask(ctx, jobID, "asset_adapt", adaptAsset, string(masterJSON), finalJob)
		}()
	}
	wg.Wait()
}

// runAssetTask drives one asset_master/asset_adapt call through the
// orchestrator and streams the outcome to the store via upsertAsset. On
// failure the asset transitions to FAILED with the error preview; the
// failure never propagates to sibling assets (spec §4.G step 3).
func (c *Coordinator) runAssetTask(ctx context.Context, jobID, taskName string, asset jobstore.Asset, masterOutput string, finalJob jobstore.Draft) (task.AssetCopy, bool) {
	taskCtx := task.TaskContext{
		JobID:            jobID,
		PlanID:           jobID,
		ChannelID:        asset.ChannelID,
		FormatID:         asset.FormatID,
		PriorStageOutput: masterOutput,
		Job:              task.JobSnapshot{JobID: jobID, Draft: finalJob.ToMap()},
	}

	if err := c.store.UpsertAsset(jobID, asset.AssetID, jobstore.AssetGenerating, nil, ""); err != nil {
		logging.AssetsError("job=%s asset=%s: %v", jobID, asset.AssetID, err)
	}

	start := time.Now()
	result := c.orchestrator.Run(ctx, taskName, taskCtx, "asset")
	durationMs := time.Since(start).Milliseconds()
	if result.Failure != nil {
		logging.AssetsWarn("job=%s asset=%s: %s task failed: %s", jobID, asset.AssetID, taskName, result.Failure.Message)
		if err := c.store.UpsertAsset(jobID, asset.AssetID, jobstore.AssetFailed,
			map[string]any{"error": result.Failure.Message, "reason": result.Failure.Reason}, ""); err != nil {
			logging.AssetsError("job=%s asset=%s: %v", jobID, asset.AssetID, err)
		}
		logging.AuditWithJob(jobID).AssetRun(logging.AuditAssetFailed, jobID, asset.AssetID, durationMs, false, result.Failure.Message)
		return task.AssetCopy{}, false
	}

	assetResult, ok := result.Value.(task.AssetResult)
	if !ok {
		logging.AssetsError("job=%s asset=%s: unexpected %s result type %T", jobID, asset.AssetID, taskName, result.Value)
		_ = c.store.UpsertAsset(jobID, asset.AssetID, jobstore.AssetFailed, map[string]any{"error": "unexpected result type"}, "")
		logging.AuditWithJob(jobID).AssetRun(logging.AuditAssetFailed, jobID, asset.AssetID, durationMs, false, "unexpected result type")
		return task.AssetCopy{}, false
	}

	content := map[string]any{
		"headline": assetResult.Copy.Headline,
		"body":     assetResult.Copy.Body,
		"cta":      assetResult.Copy.CTA,
	}
	if err := c.store.UpsertAsset(jobID, asset.AssetID, jobstore.AssetReady, content, ""); err != nil {
		logging.AssetsError("job=%s asset=%s: %v", jobID, asset.AssetID, err)
		return assetResult.Copy, false
	}
	logging.AuditWithJob(jobID).AssetRun(logging.AuditAssetComplete, jobID, asset.AssetID, durationMs, true, "")
	return assetResult.Copy, true
}
