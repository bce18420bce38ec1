// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type UserHandler struct {
	profileService *services.ProfileService
}

func NewUserHandler(profileService *services.ProfileService) *UserHandler {
	return &UserHandler{
		profileService: profileService,
	}
}

// POST /users/register
func (h *UserHandler) Register(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.RegisterProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Register(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyUserRegistered, profile)
}

// PUT /users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyUserProfileUpdated, profile)
}

// POST /users/profile-image
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUserImageInvalid), err.Error())
		return
	}
	defer file.Close()

	profile, err := h.profileService.UploadImage(c.Request.Context(), uid, file)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyUserImageUploaded, profile)
}

// GET /users/:uid
func (h *UserHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.profileService.Public(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}
