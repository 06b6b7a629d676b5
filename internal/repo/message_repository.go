package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/db"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const messagesPageSize = 15

type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) error
	GetByMessageID(ctx context.Context, messageID string) (*model.Message, error)
	ListByConversation(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error)
	// UpdateStatus moves the message status forward. The write uses $max, so
	// a late "delivered" ack can never demote a message already seen.
	UpdateStatus(ctx context.Context, messageID string, status model.MessageStatus) (*model.Message, error)
	// MarkConversationSeen flips every unseen message addressed to userID in
	// the conversation to seen, returning the number of rows changed.
	MarkConversationSeen(ctx context.Context, conversationID, userID string) (int64, error)
	// UnreadSenders returns the distinct sender ids of the messages
	// MarkConversationSeen would touch. Query it before the bulk write.
	UnreadSenders(ctx context.Context, conversationID, receiverID string) ([]string, error)
}

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

func NewMessageRepository(database *mongo.Database, collection string, logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: db.NewRepository[model.Message](database, collection),
		logger:    logger,
	}
}

func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) error {
	if msg == nil || msg.MessageID == "" || msg.ConversationID.IsZero() {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return err
			}
		}

		result, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			msg.ID = insertedObjectID(result)
			m.logger.Info("message inserted",
				zap.String("message_id", msg.MessageID),
				zap.String("conversation_id", msg.ConversationID.Hex()),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("message_id", msg.MessageID),
	)
	return fmt.Errorf("insert message failed: %w", lastErr)
}

func (m *messageRepository) GetByMessageID(ctx context.Context, messageID string) (*model.Message, error) {
	if messageID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	msg, err := m.mongoRepo.FindOne(ctx, db.NewFilter().Eq("message_id", messageID).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	return msg, nil
}

func (m *messageRepository) ListByConversation(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	if conversationID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().ObjectID("conversation_id", conversationID).Build()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
			m.logger.Warn("retrying message list",
				zap.String("conversation_id", conversationID),
				zap.Int("attempt", attempt+1),
			)
		}

		result, err := m.mongoRepo.FindWithPagination(ctx, filter, db.PaginationParams{
			Page:     page,
			PageSize: messagesPageSize,
			SortBy:   "created_at",
			SortDesc: false,
		})
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	m.logger.Error("failed to list messages",
		zap.Error(lastErr),
		zap.String("conversation_id", conversationID),
	)
	return nil, fmt.Errorf("list messages failed: %w", lastErr)
}

func (m *messageRepository) UpdateStatus(ctx context.Context, messageID string, status model.MessageStatus) (*model.Message, error) {
	if messageID == "" {
		return nil, ErrInvalidID
	}
	if status != model.StatusDelivered && status != model.StatusSeen {
		return nil, fmt.Errorf("unsupported status transition: %s", status)
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.UpdateRaw(ctx,
		db.NewFilter().Eq("message_id", messageID).Build(),
		bson.M{"$max": bson.M{"status": status}},
	)
	if err != nil {
		m.logger.Error("failed to update message status",
			zap.String("message_id", messageID),
			zap.String("status", status.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("update message status: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrMessageNotFound
	}

	return m.GetByMessageID(ctx, messageID)
}

func (m *messageRepository) MarkConversationSeen(ctx context.Context, conversationID, userID string) (int64, error) {
	if conversationID == "" || userID == "" {
		return 0, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("conversation_id", conversationID).
		Eq("receiver_id", userID).
		Lt("status", model.StatusSeen).
		Build()

	result, err := m.mongoRepo.UpdateMany(ctx, filter, map[string]interface{}{
		"status": model.StatusSeen,
	})
	if err != nil {
		m.logger.Error("failed to mark conversation seen",
			zap.String("conversation_id", conversationID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("mark conversation seen: %w", err)
	}

	m.logger.Debug("conversation marked seen",
		zap.String("conversation_id", conversationID),
		zap.String("user_id", userID),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result.ModifiedCount, nil
}

func (m *messageRepository) UnreadSenders(ctx context.Context, conversationID, receiverID string) ([]string, error) {
	if conversationID == "" || receiverID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("conversation_id", conversationID).
		Eq("receiver_id", receiverID).
		Lt("status", model.StatusSeen).
		Build()

	messages, err := m.mongoRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch unread senders: %w", err)
	}

	seen := make(map[string]struct{}, len(messages))
	var senders []string
	for _, msg := range messages {
		if _, ok := seen[msg.SenderID]; ok {
			continue
		}
		seen[msg.SenderID] = struct{}{}
		senders = append(senders, msg.SenderID)
	}
	return senders, nil
}
