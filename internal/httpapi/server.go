// Package httpapi is the HTTP Surface: thin gin handlers over the Job
// Lifecycle Store, the Asset Coordinator, and the Copilot Agent (spec §6).
// No business logic lives here beyond request validation and status-code
// translation; every handler is a direct call into one of the core
// packages.
package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gin-gonic/gin"

	"jobcore/internal/assets"
	"jobcore/internal/copilot"
	"jobcore/internal/jobstore"
	"jobcore/internal/logging"
	"jobcore/internal/orchestrator"
)

// Dependencies bundles everything a handler needs. Built once at startup by
// cmd/jobcore and threaded through NewRouter.
type Dependencies struct {
	Store        *jobstore.Store
	Orchestrator *orchestrator.Orchestrator
	Assets       *assets.Coordinator
	Copilot      *copilot.Agent
}

type server struct {
	deps      Dependencies
	validator *validator.Validate
}

// NewRouter builds the gin.Engine exposing every endpoint in spec §6.
func NewRouter(deps Dependencies) *gin.Engine {
	s := &server{deps: deps, validator: newValidator()}

	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	jobs := r.Group("/jobs")
	{
		jobs.POST("", s.createJob)
		jobs.GET("/:jobId", s.getJob)
		jobs.PATCH("/:jobId", s.patchDraft)
		jobs.POST("/:jobId/refine", s.refine)
		jobs.POST("/:jobId/finalize", s.finalize)
		jobs.GET("/:jobId/channels", s.getChannels)
		jobs.POST("/:jobId/channels/recompute", s.recomputeChannels)
		jobs.POST("/:jobId/assets", s.generateAssets)
		jobs.GET("/:jobId/assets", s.getAssets)
		jobs.GET("/:jobId/hero-image", s.getHeroImage)
		jobs.POST("/:jobId/hero-image/request", s.requestHeroImage)
		jobs.GET("/:jobId/video", s.getVideo)
		jobs.POST("/:jobId/video/request", s.requestVideo)
		jobs.POST("/:jobId/copilot", s.postCopilot)
		jobs.GET("/:jobId/copilot", s.getCopilot)
	}

	return r
}

// requestLogger logs every request through the ambient HTTP category logger,
// matching the teacher's per-request timing-log convention.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		logging.HTTP("%s %s status=%d duration=%s", c.Request.Method, c.FullPath(), status, duration)
		logging.Audit().HTTPRequest(c.FullPath(), status, duration.Milliseconds())
	}
}

func newJobID() string {
	return uuid.NewString()
}

// rfc3339 formats timestamps in wire responses.
const rfc3339 = time.RFC3339
