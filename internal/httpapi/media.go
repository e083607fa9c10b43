package httpapi

import (
	"github.com/gin-gonic/gin"
)

// getHeroImage handles GET /jobs/{jobId}/hero-image.
func (s *server) getHeroImage(c *gin.Context) {
	jobID := c.Param("jobId")
	record, err := s.deps.Store.GetHeroImage(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, gin.H{"heroImage": record})
}

// requestHeroImage handles POST /jobs/{jobId}/hero-image/request: drives
// the image_prompt -> generate -> image_caption chain, single-flighted per
// job (spec §4.G, §8 invariant 12).
func (s *server) requestHeroImage(c *gin.Context) {
	jobID := c.Param("jobId")
	var req requestMediaRequest
	_ = c.ShouldBindJSON(&req)

	finalJob, found, err := s.deps.Store.GetFinalizedDraft(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	if !found {
		conflict(c, codeMissingPrereq, "job has not been finalized yet")
		return
	}

	record, err := s.deps.Assets.RequestHeroImage(c.Request.Context(), jobID, finalJob, req.ForceRefresh)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, gin.H{"heroImage": record})
}

// getVideo handles GET /jobs/{jobId}/video.
func (s *server) getVideo(c *gin.Context) {
	jobID := c.Param("jobId")
	record, err := s.deps.Store.GetVideo(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, gin.H{"video": record})
}

// requestVideo handles POST /jobs/{jobId}/video/request: drives the
// video_config -> storyboard -> compliance -> generate -> caption chain,
// single-flighted per job.
func (s *server) requestVideo(c *gin.Context) {
	jobID := c.Param("jobId")
	var req requestMediaRequest
	_ = c.ShouldBindJSON(&req)

	finalJob, found, err := s.deps.Store.GetFinalizedDraft(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	if !found {
		conflict(c, codeMissingPrereq, "job has not been finalized yet")
		return
	}

	record, err := s.deps.Assets.RequestVideo(c.Request.Context(), jobID, finalJob, req.ForceRefresh)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, gin.H{"video": record})
}
