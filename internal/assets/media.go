package assets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"jobcore/internal/jobstore"
	"jobcore/internal/logging"
	"jobcore/internal/task"
)

// marshalStageOutput re-encodes a parsed task result so it can be threaded
// into the next video-pipeline stage via TaskContext.PriorStageOutput.
func marshalStageOutput(value any) (string, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("assets: encode stage output: %w", err)
	}
	return string(body), nil
}

// RequestHeroImage drives the image_prompt -> GenerateImage -> image_caption
// chain and persists the result via setHeroImage. At most one generation is
// in flight per job at a time: concurrent non-forceRefresh callers join the
// same singleflight call and observe the identical outcome (spec §4.G
// concurrency guarantees, §8 invariant 12).
func (c *Coordinator) RequestHeroImage(ctx context.Context, jobID string, finalJob jobstore.Draft, forceRefresh bool) (*jobstore.HeroImage, error) {
	if forceRefresh {
		c.heroFlight.Forget(jobID)
	}

	v, err, _ := c.heroFlight.Do(jobID, func() (any, error) {
		record := c.generateHeroImage(ctx, jobID, finalJob)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	record := v.(jobstore.HeroImage)
	return &record, nil
}

func (c *Coordinator) generateHeroImage(ctx context.Context, jobID string, finalJob jobstore.Draft) jobstore.HeroImage {
	record := jobstore.HeroImage{Status: jobstore.MediaPrompting}
	_ = c.store.SetHeroImage(jobID, record)

	promptCtx := task.TaskContext{JobID: jobID, Job: task.JobSnapshot{JobID: jobID, Draft: finalJob.ToMap()}}
	promptResult := c.orchestrator.Run(ctx, "image_prompt", promptCtx, "hero_image")
	if promptResult.Failure != nil {
		return c.failHeroImage(jobID, promptResult.Failure.Message)
	}
	prompt, ok := promptResult.Value.(task.ImagePromptResult)
	if !ok {
		return c.failHeroImage(jobID, "unexpected image_prompt result type")
	}

	record.Status = jobstore.MediaGenerating
	record.Provider = string(promptResult.Provider)
	record.Model = promptResult.Model
	_ = c.store.SetHeroImage(jobID, record)

	if c.imageGen == nil {
		return c.failHeroImage(jobID, "hero image generation is not configured")
	}
	media, err := c.imageGen.GenerateImage(ctx, prompt.ImagePrompt)
	if err != nil {
		return c.failHeroImage(jobID, err.Error())
	}

	captionCtx := task.TaskContext{JobID: jobID, PriorStageOutput: prompt.ImagePrompt}
	captionResult := c.orchestrator.Run(ctx, "image_caption", captionCtx, "hero_image")
	caption := task.ImageCaptionResult{}
	if captionResult.Failure == nil {
		if parsed, ok := captionResult.Value.(task.ImageCaptionResult); ok {
			caption = parsed
		}
	} else {
		logging.HeroImageWarn("job=%s: image_caption failed, continuing without caption: %s", jobID, captionResult.Failure.Message)
	}

	record.Status = jobstore.MediaReady
	record.ImageURL = dataURL(media.MimeType, media.Bytes)
	record.Caption = caption.Caption
	record.Hashtags = caption.Hashtags
	_ = c.store.SetHeroImage(jobID, record)
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditHeroImageSet, jobID, string(record.Status))
	return record
}

func (c *Coordinator) failHeroImage(jobID, message string) jobstore.HeroImage {
	record := jobstore.HeroImage{Status: jobstore.MediaFailed, Failure: message}
	_ = c.store.SetHeroImage(jobID, record)
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditHeroImageSet, jobID, string(record.Status))
	return record
}

// RequestVideo drives the video_config -> video_storyboard ->
// video_compliance chain, renders the video, runs video_caption over the
// storyboard, and persists the result.
// Single-flighted per job, same as hero-image requests.
func (c *Coordinator) RequestVideo(ctx context.Context, jobID string, finalJob jobstore.Draft, forceRefresh bool) (*jobstore.Video, error) {
	if forceRefresh {
		c.videoFlight.Forget(jobID)
	}

	v, err, _ := c.videoFlight.Do(jobID, func() (any, error) {
		record := c.generateVideo(ctx, jobID, finalJob)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	record := v.(jobstore.Video)
	return &record, nil
}

func (c *Coordinator) generateVideo(ctx context.Context, jobID string, finalJob jobstore.Draft) jobstore.Video {
	record := jobstore.Video{Status: jobstore.MediaPrompting}
	_ = c.store.SetVideo(jobID, record)

	snapshot := task.JobSnapshot{JobID: jobID, Draft: finalJob.ToMap()}

	configResult := c.orchestrator.Run(ctx, "video_config", task.TaskContext{JobID: jobID, Job: snapshot}, "video")
	if configResult.Failure != nil {
		return c.failVideo(jobID, configResult.Failure.Message)
	}
	configJSON, err := marshalStageOutput(configResult.Value)
	if err != nil {
		return c.failVideo(jobID, err.Error())
	}

	storyboardResult := c.orchestrator.Run(ctx, "video_storyboard", task.TaskContext{JobID: jobID, Job: snapshot, PriorStageOutput: configJSON}, "video")
	if storyboardResult.Failure != nil {
		return c.failVideo(jobID, storyboardResult.Failure.Message)
	}
	storyboardJSON, err := marshalStageOutput(storyboardResult.Value)
	if err != nil {
		return c.failVideo(jobID, err.Error())
	}

	complianceResult := c.orchestrator.Run(ctx, "video_compliance", task.TaskContext{JobID: jobID, PriorStageOutput: storyboardJSON}, "video")
	if complianceResult.Failure != nil {
		return c.failVideo(jobID, complianceResult.Failure.Message)
	}
	if compliance, ok := complianceResult.Value.(task.VideoComplianceResult); ok && !compliance.Approved {
		return c.failVideo(jobID, fmt.Sprintf("storyboard failed compliance review: %v", compliance.ComplianceFlags))
	}

	record.Status = jobstore.MediaGenerating
	record.Provider = string(storyboardResult.Provider)
	record.Model = storyboardResult.Model
	_ = c.store.SetVideo(jobID, record)

	if c.videoGen == nil {
		return c.failVideo(jobID, "video generation is not configured")
	}
	media, err := c.videoGen.GenerateVideo(ctx, storyboardJSON)
	if err != nil {
		return c.failVideo(jobID, err.Error())
	}

	captionResult := c.orchestrator.Run(ctx, "video_caption", task.TaskContext{JobID: jobID, PriorStageOutput: storyboardJSON}, "video")
	caption := task.VideoCaptionResult{}
	if captionResult.Failure == nil {
		if parsed, ok := captionResult.Value.(task.VideoCaptionResult); ok {
			caption = parsed
		}
	} else {
		logging.VideoWarn("job=%s: video_caption failed, continuing without caption: %s", jobID, captionResult.Failure.Message)
	}

	record.Status = jobstore.MediaReady
	record.VideoURL = dataURL(media.MimeType, media.Bytes)
	record.Caption = caption.Caption
	_ = c.store.SetVideo(jobID, record)
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditVideoSet, jobID, string(record.Status))
	return record
}

func (c *Coordinator) failVideo(jobID, message string) jobstore.Video {
	record := jobstore.Video{Status: jobstore.MediaFailed, Failure: message}
	_ = c.store.SetVideo(jobID, record)
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditVideoSet, jobID, string(record.Status))
	return record
}

func dataURL(mimeType string, body []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(body))
}
