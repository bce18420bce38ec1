// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/session
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req services.SessionRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.CreateSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyAuthLoginSuccess, resp)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	resp, err := h.authService.Me(c.Request.Context(), uid, utils.GetEmailFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, resp)
}
