package httpapi

import (
	"github.com/gin-gonic/gin"
)

// postCopilot handles POST /jobs/{jobId}/copilot: one chat turn through the
// bounded tool-call loop (spec §4.H/§6).
func (s *server) postCopilot(c *gin.Context) {
	jobID := c.Param("jobId")
	var req copilotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, codeValidation, err.Error())
		return
	}

	result, err := s.deps.Copilot.HandleTurn(c.Request.Context(), jobID, req.Stage, req.Message, req.ClientMessageID)
	if err != nil {
		internalError(c, err.Error())
		return
	}

	actions := make([]actionDTO, 0, len(result.Actions))
	for _, action := range result.Actions {
		actions = append(actions, actionDTO{Type: string(action.Type), Input: action.Input})
	}

	resp := copilotResponse{Messages: result.Messages, Actions: actions}
	if result.UpdatedDraft != nil {
		resp.UpdatedJobSnapshot = result.UpdatedDraft.ToMap()
	}
	if result.UpdatedRefined != nil {
		resp.UpdatedRefinedSnapshot = result.UpdatedRefined.ToMap()
	}
	c.JSON(200, resp)
}

// getCopilot handles GET /jobs/{jobId}/copilot: read the full conversation.
func (s *server) getCopilot(c *gin.Context) {
	jobID := c.Param("jobId")
	conversation, err := s.deps.Store.GetConversation(jobID)
	if err != nil {
		internalError(c, err.Error())
		return
	}
	c.JSON(200, gin.H{"messages": conversation})
}
