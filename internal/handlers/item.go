// internal/handlers/item.go
package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type ItemHandler struct {
	itemService     *services.ItemService
	purchaseService *services.PurchaseService
	receiptService  *services.ReceiptService
	listingService  *services.ListingService
}

// ItemView is an item with its price converted for display.
type ItemView struct {
	*models.Item
	PriceNative string `json:"price_native"`
}

type UpdateItemRequest struct {
	Title       string      `json:"title" validate:"required,max=100"`
	Price       json.Number `json:"price" validate:"required,price"`
	Explanation string      `json:"explanation" validate:"required,max=2000"`
	Category    string      `json:"category" validate:"required,category"`
	ImageURL    string      `json:"image_url" validate:"omitempty,url"`
}

func NewItemHandler(itemService *services.ItemService, purchaseService *services.PurchaseService, receiptService *services.ReceiptService, listingService *services.ListingService) *ItemHandler {
	return &ItemHandler{
		itemService:     itemService,
		purchaseService: purchaseService,
		receiptService:  receiptService,
		listingService:  listingService,
	}
}

func newItemView(item *models.Item) ItemView {
	return ItemView{Item: item, PriceNative: contract.FiatToNativeDisplay(item.Price)}
}

// GET /items
func (h *ItemHandler) GetItems(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	latest, _ := strconv.ParseBool(c.Query("latest"))

	items, total, err := h.itemService.List(c.Request.Context(), services.ItemListQuery{
		Category: params.Category,
		UID:      c.Query("uid"),
		Latest:   latest,
		Search:   params.Search,
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]ItemView, len(items))
	for i := range items {
		views[i] = newItemView(&items[i])
	}

	result := utils.CreatePaginationResult(views, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	item, err := h.itemService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, newItemView(item))
}

// POST /items/:id/purchase
func (h *ItemHandler) Purchase(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	intent, err := h.purchaseService.Purchase(c.Request.Context(), id, uid, utils.GetLangFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// GET /items/:id/purchase
func (h *ItemHandler) GetPurchase(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	intent, err := h.purchaseService.Intent(id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// DELETE /items/:id/purchase
func (h *ItemHandler) DismissPurchase(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	intent, err := h.purchaseService.Dismiss(id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /items/:id/receipt
func (h *ItemHandler) ConfirmReceipt(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	intent, err := h.receiptService.ConfirmReceipt(c.Request.Context(), id, utils.GetLangFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /items/:id/cancel
func (h *ItemHandler) CancelListing(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	intent, err := h.receiptService.CancelListing(c.Request.Context(), id, uid, utils.GetLangFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// PUT /items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := h.listingService.Update(c.Request.Context(), id, uid, services.UpdateListingRequest{
		Title:       req.Title,
		Price:       req.Price.String(),
		Explanation: req.Explanation,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}, utils.GetLangFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// GET /items/:id/receipt, GET /items/:id/cancel
func (h *ItemHandler) GetStatusIntent(key func(int64) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		intent, err := h.receiptService.Intent(key(id))
		if err != nil {
			respondError(c, err)
			return
		}

		utils.SuccessResponse(c, intent)
	}
}

// DELETE /items/:id/receipt, DELETE /items/:id/cancel
func (h *ItemHandler) DismissStatusIntent(key func(int64) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		intent, err := h.receiptService.Dismiss(key(id))
		if err != nil {
			respondError(c, err)
			return
		}

		utils.SuccessResponse(c, intent)
	}
}
