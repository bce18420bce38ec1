// internal/models/message.go
package models

import "time"

type Message struct {
	ID          int64     `json:"id"`
	SenderUID   string    `json:"sender_uid"`
	ReceiverUID string    `json:"receiver_uid"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type Conversation struct {
	PartnerUID    string    `json:"partner_uid"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}

type LikeStatus struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}
