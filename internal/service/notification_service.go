package service

import (
	"context"
	"time"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/event"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/notify"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/repo"

	"go.uber.org/zap"
)

// NotificationService persists social notifications and pushes them to live
// recipients. Repeated identical actions collapse: only the latest
// (type, sender, recipient) row survives.
type NotificationService struct {
	notifications repo.NotificationRepository
	logger        *zap.Logger

	pusher Pusher
}

func NewNotificationService(notifications repo.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// SetPusher attaches the live-delivery transport.
func (s *NotificationService) SetPusher(p Pusher) {
	s.pusher = p
}

// CreateAndSend renders, persists and pushes one notification. A
// self-notification is a silent no-op. An unknown type is a programming
// error surfaced to the caller. Push failures after persistence are
// absorbed; the row is authoritative.
func (s *NotificationService) CreateAndSend(ctx context.Context, t notify.Type, senderID, recipientID string, data notify.Data) (*model.Notification, error) {
	if senderID == recipientID {
		return nil, nil
	}

	message, err := notify.Render(t, data)
	if err != nil {
		return nil, err
	}

	deleted, err := s.notifications.DeleteMatching(ctx, string(t), senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		s.logger.Debug("collapsed prior notifications",
			zap.String("type", string(t)),
			zap.String("sender_id", senderID),
			zap.String("recipient_id", recipientID),
			zap.Int64("deleted", deleted),
		)
	}

	notification := &model.Notification{
		Type:        string(t),
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
		PostID:      data.PostID,
		CommentID:   data.CommentID,
		CreatedAt:   time.Now(),
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		delivered := s.pusher.SendToUser(recipientID, event.New(event.EventNotification, model.NotificationEvent{
			ID:        notification.ID.Hex(),
			Message:   message,
			Type:      string(t),
			SenderID:  senderID,
			PostID:    data.PostID,
			CommentID: data.CommentID,
		}))
		if !delivered {
			s.logger.Debug("recipient offline, notification persisted only",
				zap.String("recipient_id", recipientID),
			)
		}
	}

	return notification, nil
}

// GetNotifications lists a recipient's notifications, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, recipientID string) ([]model.Notification, error) {
	return s.notifications.ListForRecipient(ctx, recipientID)
}
