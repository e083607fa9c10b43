package httpapi

import (
	"github.com/gin-gonic/gin"

	"jobcore/internal/jobstore"
)

// createJob handles POST /jobs: creates a draft from a partial Job Draft
// body, generating a fresh jobId (spec §6).
func (s *server) createJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, codeValidation, err.Error())
		return
	}

	jobID := newJobID()
	draft, err := s.deps.Store.PutDraft(jobID, req.Draft)
	if err != nil {
		writeDraftError(c, err)
		return
	}

	c.JSON(201, gin.H{"jobId": jobID, "draft": draft.ToMap()})
}

// patchDraft handles PATCH /jobs/{jobId}: merges a partial Job Draft over
// the existing one (scalar fields merge individually, list fields replace
// whole, per jobstore.PutDraft).
func (s *server) patchDraft(c *gin.Context) {
	jobID := c.Param("jobId")
	var req patchDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, codeValidation, err.Error())
		return
	}

	draft, err := s.deps.Store.PutDraft(jobID, req.Draft)
	if err != nil {
		writeDraftError(c, err)
		return
	}

	c.JSON(200, gin.H{"jobId": jobID, "draft": draft.ToMap()})
}

// getJob handles GET /jobs/{jobId}: the full monotonic job snapshot (spec §6).
func (s *server) getJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, found, err := s.deps.Store.GetJob(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	if !found {
		notFound(c, "job not found")
		return
	}
	c.JSON(200, jobView(job))
}

// writeDraftError translates jobstore draft-validation errors into the
// stable 400 error codes the HTTP surface guarantees (spec §7).
func writeDraftError(c *gin.Context, err error) {
	var unknownField *jobstore.ErrUnknownField
	switch {
	case asErrUnknownField(err, &unknownField):
		badRequest(c, codeValidation, unknownField.Error())
	case err == jobstore.ErrInvalidLogoURL:
		badRequest(c, codeValidation, err.Error())
	default:
		internalError(c, err.Error())
	}
}

func asErrUnknownField(err error, target **jobstore.ErrUnknownField) bool {
	if e, ok := err.(*jobstore.ErrUnknownField); ok {
		*target = e
		return true
	}
	return false
}
