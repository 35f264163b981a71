package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"akneDenikAPI/internal/logger"
)

// Messenger is the part of *messaging.Client used for delivery.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMService struct {
	client Messenger
	log    *logger.Logger
}

func NewFCMService(client Messenger, log *logger.Logger) *FCMService {
	if log == nil {
		log = logger.Nop()
	}
	return &FCMService{client: client, log: log}
}

// SendPush delivers one message per token. The batch endpoint is not used because it is not
// available for every project. It fails only when every token failed.
func (s *FCMService) SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	sent, failed := 0, 0
	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			},
		}
		if _, err := s.client.Send(ctx, msg); err != nil {
			s.log.Warn("FCM send failed", "error", err)
			failed++
			continue
		}
		sent++
	}

	s.log.Info("FCM push finished", "sent", sent, "failed", failed)
	if sent == 0 {
		return fmt.Errorf("all %d push notifications failed", failed)
	}
	return nil
}
