package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/db"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	// DeleteMatching removes every notification with the same
	// (type, sender, recipient) triple, collapsing repeated actions into
	// whatever gets inserted next.
	DeleteMatching(ctx context.Context, notificationType, senderID, recipientID string) (int64, error)
	Insert(ctx context.Context, notification *model.Notification) error
	ListForRecipient(ctx context.Context, recipientID string) ([]model.Notification, error)
}

type notificationRepository struct {
	mongoRepo *db.Repository[model.Notification]
	logger    *zap.Logger
}

func NewNotificationRepository(database *mongo.Database, collection string, logger *zap.Logger) NotificationRepository {
	return &notificationRepository{
		mongoRepo: db.NewRepository[model.Notification](database, collection),
		logger:    logger,
	}
}

func tripleFilter(notificationType, senderID, recipientID string) map[string]interface{} {
	return db.NewFilter().
		Eq("type", notificationType).
		Eq("sender_id", senderID).
		Eq("recipient_id", recipientID).
		Build()
}

func (r *notificationRepository) DeleteMatching(ctx context.Context, notificationType, senderID, recipientID string) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.DeleteMany(ctx, tripleFilter(notificationType, senderID, recipientID))
	if err != nil {
		r.logger.Error("failed to delete prior notifications",
			zap.String("type", notificationType),
			zap.String("sender_id", senderID),
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("delete prior notifications: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *notificationRepository) Insert(ctx context.Context, notification *model.Notification) error {
	if notification == nil {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	result, err := r.mongoRepo.Create(ctx, *notification)
	if err != nil {
		r.logger.Error("failed to insert notification",
			zap.String("type", notification.Type),
			zap.String("recipient_id", notification.RecipientID),
			zap.Error(err),
		)
		return fmt.Errorf("insert notification: %w", err)
	}

	notification.ID = insertedObjectID(result)
	return nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID string) ([]model.Notification, error) {
	if recipientID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	notifications, err := r.mongoRepo.FindAllSorted(ctx,
		db.NewFilter().Eq("recipient_id", recipientID).Build(),
		"created_at", true,
	)
	if err != nil {
		r.logger.Error("failed to list notifications", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
