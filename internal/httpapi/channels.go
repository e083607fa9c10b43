package httpapi

import (
	"github.com/gin-gonic/gin"

	"jobcore/internal/assets"
	"jobcore/internal/jobstore"
	"jobcore/internal/task"
)

// getChannels handles GET /jobs/{jobId}/channels: read cached recommendations.
func (s *server) getChannels(c *gin.Context) {
	jobID := c.Param("jobId")
	recs, err := s.deps.Store.GetChannelRecommendations(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, channelsResponse{Recommendations: recs})
}

// recomputeChannels handles POST /jobs/{jobId}/channels/recompute: re-runs
// the channels task against the job's finalized draft.
func (s *server) recomputeChannels(c *gin.Context) {
	jobID := c.Param("jobId")
	finalJob, found, err := s.deps.Store.GetFinalizedDraft(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	if !found {
		conflict(c, codeMissingPrereq, "job has not been finalized yet")
		return
	}

	taskCtx := task.TaskContext{
		JobID:             jobID,
		Job:               task.JobSnapshot{JobID: jobID, Draft: finalJob.ToMap()},
		SupportedChannels: assets.SupportedChannels(),
	}
	result := s.deps.Orchestrator.Run(c.Request.Context(), "channels", taskCtx, "channels_recompute")
	if result.Failure != nil {
		failure := &jobstore.Failure{Reason: result.Failure.Reason, Message: result.Failure.Message, RawPreview: result.Failure.RawPreview}
		if _, err := s.deps.Store.SetChannelRecommendations(jobID, nil, failure); err != nil {
			internalError(c, err.Error())
			return
		}
		c.JSON(200, channelsResponse{})
		return
	}

	channelsResult, ok := result.Value.(task.ChannelsResult)
	if !ok {
		internalError(c, "unexpected channels result type")
		return
	}

	recs := make([]jobstore.ChannelRecommendation, 0, len(channelsResult.Recommendations))
	for _, rec := range channelsResult.Recommendations {
		recs = append(recs, jobstore.ChannelRecommendation{Channel: rec.Channel, Reason: rec.Reason, ExpectedCPA: rec.ExpectedCPA})
	}
	if _, err := s.deps.Store.SetChannelRecommendations(jobID, recs, nil); err != nil {
		internalError(c, err.Error())
		return
	}

	c.JSON(200, channelsResponse{Recommendations: recs})
}
