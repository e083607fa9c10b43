package httpapi

import (
	"github.com/gin-gonic/gin"
)

// generateAssets handles POST /jobs/{jobId}/assets: starts an asset run
// over the selected channels. Requires the job to already be finalized
// (spec §7 state-machine violation: "generate-assets without finalization").
func (s *server) generateAssets(c *gin.Context) {
	jobID := c.Param("jobId")
	var req generateAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, codeValidation, err.Error())
		return
	}
	if err := validateChannelIDs(s.validator, req.ChannelIDs); err != nil {
		badRequest(c, codeValidation, err.Error())
		return
	}

	finalJob, found, err := s.deps.Store.GetFinalizedDraft(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	if !found {
		conflict(c, codeMissingPrereq, "job has not been finalized yet")
		return
	}

	assetRows, err := s.deps.Assets.PlanAndLaunch(c.Request.Context(), jobID, req.ChannelIDs, finalJob)
	if err != nil {
		badRequest(c, codeNoChannelsSelected, err.Error())
		return
	}

	run, err := s.deps.Store.GetAssetRun(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(202, assetsResponse{Assets: assetRows, Run: run})
}

// getAssets handles GET /jobs/{jobId}/assets: poll for {assets[], run}
// (spec §6). The store's snapshot read guarantees a later poll never
// reports fewer completed assets than an earlier one.
func (s *server) getAssets(c *gin.Context) {
	jobID := c.Param("jobId")
	assetRows, err := s.deps.Store.GetAssets(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	run, err := s.deps.Store.GetAssetRun(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, assetsResponse{Assets: assetRows, Run: run})
}
