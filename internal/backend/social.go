// internal/backend/social.go
package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frima-market/frima-gateway/internal/models"
)

type likeRequest struct {
	ItemID int64  `json:"item_id"`
	UID    string `json:"uid"`
}

type sendMessageRequest struct {
	SenderUID   string `json:"sender_uid"`
	ReceiverUID string `json:"receiver_uid"`
	Content     string `json:"content"`
}

type markReadRequest struct {
	MyUID      string `json:"my_uid"`
	PartnerUID string `json:"partner_uid"`
}

func (c *Client) AddLike(ctx context.Context, itemID int64, uid string) error {
	return c.doJSON(ctx, http.MethodPost, "/likes", nil, likeRequest{ItemID: itemID, UID: uid}, nil)
}

// RemoveLike sends the pair both as query and body; the backend reads either.
func (c *Client) RemoveLike(ctx context.Context, itemID int64, uid string) error {
	query := url.Values{"item_id": {strconv.FormatInt(itemID, 10)}, "uid": {uid}}
	return c.doJSON(ctx, http.MethodDelete, "/likes", query, likeRequest{ItemID: itemID, UID: uid}, nil)
}

func (c *Client) LikeStatus(ctx context.Context, itemID int64, uid string) (*models.LikeStatus, error) {
	query := url.Values{"item_id": {strconv.FormatInt(itemID, 10)}}
	if uid != "" {
		query.Set("uid", uid)
	}
	var status models.LikeStatus
	if err := c.get(ctx, "/likes/status", query, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) UserLikes(ctx context.Context, uid string) ([]int64, error) {
	var resp struct {
		ItemIDs []int64 `json:"item_ids"`
	}
	if err := c.get(ctx, "/likes/user", url.Values{"uid": {uid}}, &resp); err != nil {
		return nil, err
	}
	return resp.ItemIDs, nil
}

func (c *Client) Messages(ctx context.Context, myUID, partnerUID string) ([]models.Message, error) {
	var messages []models.Message
	query := url.Values{"my_uid": {myUID}, "partner_uid": {partnerUID}}
	if err := c.get(ctx, "/messages", query, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, senderUID, receiverUID, content string) (*models.Message, error) {
	var msg models.Message
	req := sendMessageRequest{SenderUID: senderUID, ReceiverUID: receiverUID, Content: content}
	if err := c.doJSON(ctx, http.MethodPost, "/messages/send", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) MarkRead(ctx context.Context, myUID, partnerUID string) error {
	return c.doJSON(ctx, http.MethodPut, "/messages/read", nil, markReadRequest{MyUID: myUID, PartnerUID: partnerUID}, nil)
}

func (c *Client) Conversations(ctx context.Context, uid string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := c.get(ctx, "/messages/conversations", url.Values{"uid": {uid}}, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (c *Client) Register(ctx context.Context, reg models.UserRegistration) error {
	return c.doJSON(ctx, http.MethodPost, "/register", nil, reg, nil)
}

func (c *Client) User(ctx context.Context, uid string) (*models.UserRegistration, error) {
	var reg models.UserRegistration
	if err := c.get(ctx, "/users/"+url.PathEscape(uid), nil, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}
