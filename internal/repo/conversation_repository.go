package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/db"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ConversationRepository interface {
	// FindPrivate returns the private conversation between the pair, or
	// ErrConversationNotFound.
	FindPrivate(ctx context.Context, userA, userB string) (*model.Conversation, error)
	// CreatePrivate inserts the private conversation for the pair. A
	// duplicate-key collision on the pair key means another writer won the
	// race; the existing conversation is fetched and returned instead.
	CreatePrivate(ctx context.Context, userA, userB string) (*model.Conversation, error)
	CreateGroup(ctx context.Context, participantIDs []string, name string) (*model.Conversation, error)
	GetByID(ctx context.Context, conversationID string) (*model.Conversation, error)
	Rename(ctx context.Context, conversationID, name string) (*model.Conversation, error)
	// Touch bumps updated_at so the conversation sorts as recently active.
	Touch(ctx context.Context, conversationID string) error
	ListForUser(ctx context.Context, userID string) ([]model.Conversation, error)
}

type conversationRepository struct {
	mongoRepo *db.Repository[model.Conversation]
	logger    *zap.Logger
}

func NewConversationRepository(database *mongo.Database, collection string, logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		mongoRepo: db.NewRepository[model.Conversation](database, collection),
		logger:    logger,
	}
}

func (r *conversationRepository) FindPrivate(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("pair_key", model.PairKeyFor(userA, userB)).Build()
	conversation, err := r.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConversationNotFound
		}
		r.logger.Error("failed to fetch private conversation",
			zap.String("user_a", userA),
			zap.String("user_b", userB),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch private conversation: %w", err)
	}
	return conversation, nil
}

func (r *conversationRepository) CreatePrivate(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	now := time.Now()
	conversation := model.Conversation{
		ConversationType: model.ConversationPrivate,
		PairKey:          model.PairKeyFor(userA, userB),
		ParticipantIDs:   []string{userA, userB},
		Participants: []model.Participant{
			{UserID: userA, JoinedAt: now},
			{UserID: userB, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := r.mongoRepo.Create(ctx, conversation)
	if err != nil {
		if db.IsDuplicateKey(err) {
			// Lost the race: the pair's conversation already exists.
			r.logger.Debug("private conversation already exists, re-fetching",
				zap.String("pair_key", conversation.PairKey),
			)
			return r.FindPrivate(ctx, userA, userB)
		}
		r.logger.Error("failed to insert private conversation",
			zap.String("pair_key", conversation.PairKey),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert private conversation: %w", err)
	}

	conversation.ID = insertedObjectID(result)

	r.logger.Info("private conversation created",
		zap.String("conversation_id", conversation.ID.Hex()),
		zap.String("pair_key", conversation.PairKey),
	)
	return &conversation, nil
}

func (r *conversationRepository) CreateGroup(ctx context.Context, participantIDs []string, name string) (*model.Conversation, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	now := time.Now()
	participants := make([]model.Participant, 0, len(participantIDs))
	for _, id := range participantIDs {
		participants = append(participants, model.Participant{UserID: id, JoinedAt: now})
	}

	conversation := model.Conversation{
		ConversationType: model.ConversationGroup,
		Name:             name,
		ParticipantIDs:   participantIDs,
		Participants:     participants,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	result, err := r.mongoRepo.Create(ctx, conversation)
	if err != nil {
		r.logger.Error("failed to insert group conversation",
			zap.Int("participants", len(participantIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert group conversation: %w", err)
	}

	conversation.ID = insertedObjectID(result)

	r.logger.Info("group conversation created",
		zap.String("conversation_id", conversation.ID.Hex()),
		zap.Int("participants", len(participantIDs)),
	)
	return &conversation, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if conversationID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conversation, err := r.mongoRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	return conversation, nil
}

func (r *conversationRepository) Rename(ctx context.Context, conversationID, name string) (*model.Conversation, error) {
	if conversationID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.UpdateByID(ctx, conversationID, map[string]interface{}{
		"name":       name,
		"updated_at": time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("rename conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrConversationNotFound
	}

	return r.GetByID(ctx, conversationID)
}

func (r *conversationRepository) Touch(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.UpdateByID(ctx, conversationID, map[string]interface{}{
		"updated_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conversations, err := r.mongoRepo.FindAllSorted(ctx,
		db.NewFilter().Eq("participant_ids", userID).Build(),
		"updated_at", true,
	)
	if err != nil {
		r.logger.Error("failed to list conversations", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}
