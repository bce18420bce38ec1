// internal/handlers/listing.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
}

type ListingForm struct {
	Title       string `form:"title" validate:"required,max=100"`
	Price       string `form:"price" validate:"required,price"`
	Explanation string `form:"explanation" validate:"required,max=2000"`
	Category    string `form:"category" validate:"required,category"`
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var form ListingForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&form)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyItemImageRequired), nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyItemImageRequired), err.Error())
		return
	}
	defer file.Close()

	intent, err := h.listingService.List(c.Request.Context(), services.ListingRequest{
		UID:         uid,
		Title:       form.Title,
		Price:       form.Price,
		Explanation: form.Explanation,
		Category:    form.Category,
		ImageName:   header.Filename,
		Image:       file,
	}, lang)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// GET /listings/current
func (h *ListingHandler) GetCurrent(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	intent, err := h.listingService.Current(uid)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// DELETE /listings/current
func (h *ListingHandler) DismissCurrent(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	intent, err := h.listingService.Dismiss(uid)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}
