package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/types/message"
	"akneDenikAPI/internal/types/profile"
)

const maxMessageLength = 2000

type MessageStore interface {
	AddMessage(ctx context.Context, msg message.Message) (message.Message, error)
	ListMessages(ctx context.Context, userID string) ([]message.Message, error)
	ListAllMessages(ctx context.Context) ([]message.Message, error)
	MarkMessagesRead(ctx context.Context, userID string, sender message.Sender) (int, error)
	GetProfile(ctx context.Context, userID string) (profile.UserProfile, error)
	AddDeviceToken(ctx context.Context, userID, token string) error
}

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// MessageService is the support chat between a user and the clinic staff.
type MessageService struct {
	store MessageStore
	push  PushNotificationProvider
	log   *logger.Logger
	now   func() time.Time
}

// NewMessageService accepts a nil push provider; replies are then stored without notification.
func NewMessageService(store MessageStore, push PushNotificationProvider, log *logger.Logger) *MessageService {
	if log == nil {
		log = logger.Nop()
	}
	return &MessageService{store: store, push: push, log: log, now: time.Now}
}

func (s *MessageService) Send(ctx context.Context, userID, text string) (message.Message, error) {
	return s.add(ctx, userID, userID, message.SenderUser, text)
}

// Reply stores a support message and notifies the user's devices. Push failures are logged only.
func (s *MessageService) Reply(ctx context.Context, userID, adminID, text string) (message.Message, error) {
	msg, err := s.add(ctx, userID, adminID, message.SenderSupport, text)
	if err != nil {
		return message.Message{}, err
	}
	s.notify(ctx, msg)
	return msg, nil
}

func (s *MessageService) add(ctx context.Context, userID, authorID string, sender message.Sender, text string) (message.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return message.Message{}, apperr.Validation("text is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return message.Message{}, apperr.Validation("text must be at most %d characters", maxMessageLength)
	}
	msg, err := s.store.AddMessage(ctx, message.Message{
		UserID:    userID,
		Sender:    sender,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Error("Failed to store message", "user_id", userID, "sender", sender, "error", err)
		return message.Message{}, apperr.WithUser(err, userID, 0)
	}
	return msg, nil
}

func (s *MessageService) notify(ctx context.Context, msg message.Message) {
	if s.push == nil {
		return
	}
	p, err := s.store.GetProfile(ctx, msg.UserID)
	if err != nil {
		s.log.Warn("Skipping reply push, profile unavailable", "user_id", msg.UserID, "error", err)
		return
	}
	if len(p.DeviceTokens) == 0 {
		return
	}
	data := map[string]string{
		"type":      "support_reply",
		"messageId": msg.ID,
	}
	if err := s.push.SendPush(ctx, p.DeviceTokens, "Nová zpráva od podpory", preview(msg.Text), data); err != nil {
		s.log.Warn("Reply push failed", "user_id", msg.UserID, "error", err)
	}
}

func preview(text string) string {
	const limit = 120
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	r := []rune(text)
	return string(r[:limit]) + "…"
}

// Thread returns the conversation of one user, oldest first.
func (s *MessageService) Thread(ctx context.Context, userID string) ([]message.Message, error) {
	msgs, err := s.store.ListMessages(ctx, userID)
	if err != nil {
		return nil, apperr.WithUser(err, userID, 0)
	}
	return msgs, nil
}

// MarkRead marks the messages written by the other side as read for reader.
func (s *MessageService) MarkRead(ctx context.Context, userID string, reader message.Sender) (int, error) {
	other := message.SenderSupport
	if reader == message.SenderSupport {
		other = message.SenderUser
	}
	n, err := s.store.MarkMessagesRead(ctx, userID, other)
	if err != nil {
		return 0, apperr.WithUser(err, userID, 0)
	}
	return n, nil
}

// Conversations groups every message by user. Unread counts user messages support has not read.
func (s *MessageService) Conversations(ctx context.Context) ([]message.Conversation, error) {
	msgs, err := s.store.ListAllMessages(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*message.Conversation)
	for _, m := range msgs {
		c, ok := byUser[m.UserID]
		if !ok {
			c = &message.Conversation{UserID: m.UserID}
			byUser[m.UserID] = c
		}
		c.Total++
		if !m.CreatedAt.Before(c.LastMessage.CreatedAt) {
			c.LastMessage = m
		}
		if m.Sender == message.SenderUser && !m.Read {
			c.UnreadCount++
		}
	}

	out := make([]message.Conversation, 0, len(byUser))
	for _, c := range byUser {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out, nil
}

func (s *MessageService) RegisterDevice(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Validation("token is required")
	}
	if err := s.store.AddDeviceToken(ctx, userID, token); err != nil {
		return apperr.WithUser(err, userID, 0)
	}
	s.log.Info("Device registered", "user_id", userID)
	return nil
}
