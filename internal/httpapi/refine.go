package httpapi

import (
	"github.com/gin-gonic/gin"

	"jobcore/internal/jobstore"
	"jobcore/internal/task"
)

// refine handles POST /jobs/{jobId}/refine: runs the refine task against
// the job's current draft and persists the result (spec §4.A/§6).
func (s *server) refine(c *gin.Context) {
	jobID := c.Param("jobId")
	draft, found, err := s.deps.Store.GetDraft(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	if !found {
		notFound(c, "job not found")
		return
	}

	taskCtx := task.TaskContext{JobID: jobID, Job: task.JobSnapshot{JobID: jobID, Draft: draft.ToMap()}}
	result := s.deps.Orchestrator.Run(c.Request.Context(), "refine", taskCtx, "refine")
	if result.Failure != nil {
		failure := &jobstore.Failure{Reason: result.Failure.Reason, Message: result.Failure.Message, RawPreview: result.Failure.RawPreview}
		if err := s.deps.Store.PutRefinement(jobID, draft, "", jobstore.RefinementMetadata{}, failure); err != nil {
			internalError(c, err.Error())
			return
		}
		c.JSON(200, refineResponse{OriginalJob: draft.ToMap(), Failure: failure})
		return
	}

	refineResult, ok := result.Value.(task.RefineResult)
	if !ok {
		internalError(c, "unexpected refine result type")
		return
	}

	refined, err := jobstore.NormalizeDraft(refineResult.RefinedJob)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	metadata := jobstore.RefinementMetadata{
		ImprovementScore: refineResult.Analysis.ImprovementScore,
		OriginalScore:    refineResult.Analysis.OriginalScore,
		ImpactSummary:    refineResult.Analysis.ImpactSummary,
		KeyImprovements:  refineResult.Analysis.KeyImprovements,
	}
	if err := s.deps.Store.PutRefinement(jobID, refined, refineResult.Summary, metadata, nil); err != nil {
		internalError(c, err.Error())
		return
	}

	c.JSON(200, refineResponse{
		OriginalJob: draft.ToMap(),
		RefinedJob:  refined.ToMap(),
		Summary:     refineResult.Summary,
		Metadata:    &metadata,
	})
}
