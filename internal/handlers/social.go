// internal/handlers/social.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type LikeHandler struct {
	likeService *services.LikeService
}

type LikeRequest struct {
	ItemID int64 `json:"item_id" validate:"required,min=1"`
}

func NewLikeHandler(likeService *services.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// POST /likes
func (h *LikeHandler) AddLike(c *gin.Context) {
	h.setLike(c, true)
}

// DELETE /likes
func (h *LikeHandler) RemoveLike(c *gin.Context) {
	h.setLike(c, false)
}

func (h *LikeHandler) setLike(c *gin.Context, liked bool) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req LikeRequest
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.likeService.SetLike(c.Request.Context(), req.ItemID, uid, liked)
	if err != nil {
		respondError(c, err)
		return
	}

	key := i18n.KeyLikeAdded
	if !liked {
		key = i18n.KeyLikeRemoved
	}
	utils.MessageResponse(c, key, status)
}

// GET /likes/status?item_id=
func (h *LikeHandler) GetStatus(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseItemID(c, c.Query("item_id"))
	if !ok {
		return
	}

	status, err := h.likeService.Status(c.Request.Context(), itemID, uid)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, status)
}

// GET /likes/user
func (h *LikeHandler) GetUserLikes(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	ids, err := h.likeService.UserLikes(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"item_ids": ids})
}

type MessageHandler struct {
	messageService *services.MessageService
}

type SendMessageRequest struct {
	ReceiverUID string `json:"receiver_uid" validate:"required"`
	Content     string `json:"content" validate:"required,max=1000"`
}

type MarkReadRequest struct {
	PartnerUID string `json:"partner_uid" validate:"required"`
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func partnerParam(c *gin.Context) (string, bool) {
	partner := c.Query("partner_uid")
	if partner == "" {
		utils.BadRequestResponse(c, "", "partner_uid is required")
		return "", false
	}
	return partner, true
}

// GET /messages?partner_uid=
func (h *MessageHandler) GetMessages(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	partner, ok := partnerParam(c)
	if !ok {
		return
	}

	msgs, err := h.messageService.History(c.Request.Context(), uid, partner)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, msgs)
}

// POST /messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), uid, req.ReceiverUID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyMessageSent, msg)
}

// PUT /messages/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req MarkReadRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), uid, req.PartnerUID); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyMessagesRead, nil)
}

// GET /messages/conversations
func (h *MessageHandler) GetConversations(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	convs, err := h.messageService.Conversations(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, convs)
}

// GET /messages/stream?partner_uid=
func (h *MessageHandler) StreamMessages(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	partner, ok := partnerParam(c)
	if !ok {
		return
	}

	streamEvents(c, "messages", h.messageService.MessageFeed(c.Request.Context(), uid, partner))
}

// GET /messages/unread/stream
func (h *MessageHandler) StreamUnread(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	streamEvents(c, "unread", h.messageService.UnreadFeed(c.Request.Context(), uid))
}
