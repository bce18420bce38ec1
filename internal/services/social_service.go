// internal/services/social_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/models"
)

var (
	ErrMessageSelf  = errors.New("cannot message yourself")
	ErrMessageEmpty = errors.New("message content is required")
)

type LikeService struct {
	backend SocialBackend
}

func NewLikeService(b SocialBackend) *LikeService {
	return &LikeService{backend: b}
}

// SetLike adds or removes the user's like and returns the status the
// backend reports afterwards.
func (s *LikeService) SetLike(ctx context.Context, itemID int64, uid string, liked bool) (*models.LikeStatus, error) {
	var err error
	if liked {
		err = s.backend.AddLike(ctx, itemID, uid)
	} else {
		err = s.backend.RemoveLike(ctx, itemID, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update like: %w", err)
	}
	return s.Status(ctx, itemID, uid)
}

func (s *LikeService) Status(ctx context.Context, itemID int64, uid string) (*models.LikeStatus, error) {
	status, err := s.backend.LikeStatus(ctx, itemID, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get like status: %w", err)
	}
	return status, nil
}

func (s *LikeService) UserLikes(ctx context.Context, uid string) ([]int64, error) {
	ids, err := s.backend.UserLikes(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get liked items: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

type MessageService struct {
	backend          SocialBackend
	messagesInterval time.Duration
	unreadInterval   time.Duration
	log              *logrus.Entry
}

func NewMessageService(b SocialBackend, messagesInterval, unreadInterval time.Duration) *MessageService {
	return &MessageService{
		backend:          b,
		messagesInterval: messagesInterval,
		unreadInterval:   unreadInterval,
		log:              logrus.WithField("component", "messages"),
	}
}

func (s *MessageService) History(ctx context.Context, myUID, partnerUID string) ([]models.Message, error) {
	msgs, err := s.backend.Messages(ctx, myUID, partnerUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

func (s *MessageService) Send(ctx context.Context, myUID, partnerUID, content string) (*models.Message, error) {
	if myUID == partnerUID {
		return nil, ErrMessageSelf
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	msg, err := s.backend.SendMessage(ctx, myUID, partnerUID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) MarkRead(ctx context.Context, myUID, partnerUID string) error {
	if err := s.backend.MarkRead(ctx, myUID, partnerUID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (s *MessageService) Conversations(ctx context.Context, uid string) ([]models.Conversation, error) {
	convs, err := s.backend.Conversations(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	return convs, nil
}

// UnreadTotal sums the unread counts over every conversation.
func (s *MessageService) UnreadTotal(ctx context.Context, uid string) (int, error) {
	convs, err := s.Conversations(ctx, uid)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range convs {
		total += c.UnreadCount
	}
	return total, nil
}

// MessageFeed polls one conversation and delivers its history whenever it
// changes. The channel closes once ctx is done.
func (s *MessageService) MessageFeed(ctx context.Context, myUID, partnerUID string) <-chan []models.Message {
	return Poll(ctx, s.messagesInterval, func(ctx context.Context) ([]models.Message, error) {
		return s.History(ctx, myUID, partnerUID)
	}, sameMessages, s.log.WithField("feed", "messages"))
}

// UnreadFeed polls the unread total and delivers it whenever it changes.
func (s *MessageService) UnreadFeed(ctx context.Context, uid string) <-chan int {
	return Poll(ctx, s.unreadInterval, func(ctx context.Context) (int, error) {
		return s.UnreadTotal(ctx, uid)
	}, func(a, b int) bool { return a == b }, s.log.WithField("feed", "unread"))
}

func sameMessages(a, b []models.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].IsRead != b[i].IsRead {
			return false
		}
	}
	return true
}
