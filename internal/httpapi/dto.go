package httpapi

import (
	"jobcore/internal/jobstore"
)

// draftFields lets a caller PATCH-shape a Job Draft over the wire without
// exposing jobstore.FieldID as the wire type. Validation (closed field-id
// set, logoUrl shape) happens in jobstore.NormalizeDraft; validator/v10
// here only guards the request envelope itself.
type draftFields map[string]any

type createJobRequest struct {
	Draft draftFields `json:"draft" binding:"required"`
}

type patchDraftRequest struct {
	Draft draftFields `json:"draft" binding:"required"`
}

type refineResponse struct {
	OriginalJob map[string]any               `json:"originalJob"`
	RefinedJob  map[string]any                `json:"refinedJob"`
	Summary     string                        `json:"summary"`
	Metadata    *jobstore.RefinementMetadata  `json:"metadata,omitempty"`
	Failure     *jobstore.Failure             `json:"failure,omitempty"`
}

type finalizeRequest struct {
	FinalJob draftFields `json:"finalJob" binding:"required"`
	Source   string      `json:"source" binding:"required,oneof=original refined edited"`
}

type finalizeResponse struct {
	ChannelRecommendations []jobstore.ChannelRecommendation `json:"channelRecommendations"`
	ChannelUpdatedAt       string                            `json:"channelUpdatedAt,omitempty"`
	ChannelFailure         *jobstore.Failure                 `json:"channelFailure,omitempty"`
}

type channelsResponse struct {
	Recommendations []jobstore.ChannelRecommendation `json:"recommendations"`
}

type generateAssetsRequest struct {
	ChannelIDs []string `json:"channelIds" binding:"required,min=1"`
	Source     string   `json:"source" binding:"required,oneof=original refined edited"`
}

type assetsResponse struct {
	Assets []jobstore.Asset `json:"assets"`
	Run    *jobstore.AssetRun `json:"run"`
}

type requestMediaRequest struct {
	ForceRefresh bool `json:"forceRefresh"`
}

type copilotRequest struct {
	Message         string `json:"message" binding:"required"`
	Stage           string `json:"stage" binding:"required,oneof=wizard refine channels assets"`
	ClientMessageID string `json:"clientMessageId"`
}

type copilotResponse struct {
	Messages              []jobstore.CopilotMessage `json:"messages"`
	Actions               []actionDTO               `json:"actions"`
	UpdatedJobSnapshot     map[string]any            `json:"updatedJobSnapshot,omitempty"`
	UpdatedRefinedSnapshot map[string]any            `json:"updatedRefinedSnapshot,omitempty"`
}

type actionDTO struct {
	Type  string         `json:"type"`
	Input map[string]any `json:"input"`
}

// jobView renders the full jobstore.Job snapshot into the wire shape GET
// /jobs/{jobId} returns (spec §6).
func jobView(job *jobstore.Job) map[string]any {
	view := map[string]any{
		"jobId":     job.JobID,
		"draft":     job.Draft.ToMap(),
		"createdAt": job.CreatedAt,
		"updatedAt": job.UpdatedAt,
	}
	if job.Refined != nil {
		view["refined"] = job.Refined.ToMap()
		view["refinementSummary"] = job.RefinementSummary
		view["refinementMetadata"] = job.RefinementMetadata
	}
	if job.RefinementFailure != nil {
		view["refinementFailure"] = job.RefinementFailure
	}
	if job.Finalization != nil {
		view["finalization"] = job.Finalization
	}
	if job.ChannelRecommendations != nil {
		view["channelRecommendations"] = job.ChannelRecommendations
		view["channelsUpdatedAt"] = job.ChannelsUpdatedAt
	}
	if job.ChannelsFailure != nil {
		view["channelsFailure"] = job.ChannelsFailure
	}
	if job.AssetRun != nil {
		view["assetRun"] = job.AssetRun
	}
	view["assets"] = job.Assets
	if job.HeroImage != nil {
		view["heroImage"] = job.HeroImage
	}
	if job.Video != nil {
		view["video"] = job.Video
	}
	view["copilotConversation"] = job.CopilotConversation
	return view
}
