// internal/handlers/intent.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type IntentHandler struct {
	flows *services.FlowRegistry
}

func NewIntentHandler(flows *services.FlowRegistry) *IntentHandler {
	return &IntentHandler{flows: flows}
}

// GET /intents
func (h *IntentHandler) GetIntents(c *gin.Context) {
	utils.SuccessResponse(c, h.flows.Snapshots())
}
