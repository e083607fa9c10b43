package httpapi

import (
	"github.com/gin-gonic/gin"

	"jobcore/internal/assets"
	"jobcore/internal/jobstore"
	"jobcore/internal/task"
)

// finalize handles POST /jobs/{jobId}/finalize: validates the required-for-
// refine field set, stamps the finalization, then synchronously runs the
// channels task and persists its recommendations (spec §4.F/§6; finalize
// "triggers channel-recommendation computation").
func (s *server) finalize(c *gin.Context) {
	jobID := c.Param("jobId")
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, codeValidation, err.Error())
		return
	}

	finalJob, err := jobstore.NormalizeDraft(req.FinalJob)
	if err != nil {
		writeDraftError(c, err)
		return
	}
	if !finalJob.HasRequiredForRefine() {
		conflict(c, codeMissingPrereq, "finalJob is missing one or more required fields")
		return
	}

	if _, err := s.deps.Store.Finalize(jobID, finalJob, jobstore.FinalizationSource(req.Source)); err != nil {
		if err == jobstore.ErrInvalidSource {
			badRequest(c, codeValidation, err.Error())
			return
		}
		internalError(c, err.Error())
		return
	}

	taskCtx := task.TaskContext{
		JobID:             jobID,
		Job:               task.JobSnapshot{JobID: jobID, Draft: finalJob.ToMap()},
		SupportedChannels: assets.SupportedChannels(),
	}
	result := s.deps.Orchestrator.Run(c.Request.Context(), "channels", taskCtx, "finalize")
	if result.Failure != nil {
		failure := &jobstore.Failure{Reason: result.Failure.Reason, Message: result.Failure.Message, RawPreview: result.Failure.RawPreview}
		if _, err := s.deps.Store.SetChannelRecommendations(jobID, nil, failure); err != nil {
			internalError(c, err.Error())
			return
		}
		c.JSON(200, finalizeResponse{ChannelFailure: failure})
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

	updatedAt, err := s.deps.Store.SetChannelRecommendations(jobID, recs, nil)
	if err != nil {
		internalError(c, err.Error())
		return
	}

	c.JSON(200, finalizeResponse{
		ChannelRecommendations: recs,
		ChannelUpdatedAt:       updatedAt.Format(rfc3339),
	})
}
