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

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// FindMissing returns every id in userIDs that has no user document.
	FindMissing(ctx context.Context, userIDs []string) ([]string, error)
	// FindRefs returns the reduced response shape for every id that exists.
	FindRefs(ctx context.Context, userIDs []string) (map[string]model.UserRef, error)
	SetOnline(ctx context.Context, userID string, online bool) error
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(database *mongo.Database, collection string, logger *zap.Logger) UserRepository {
	return &userRepository{
		mongoRepo: db.NewRepository[model.User](database, collection),
		logger:    logger,
	}
}

func (r *userRepository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("user_id", userID).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("failed to fetch user", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("email", email).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindMissing(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	found, err := r.mongoRepo.FindAll(ctx, db.NewFilter().In("user_id", userIDs).Build())
	if err != nil {
		r.logger.Error("failed to look up users", zap.Strings("user_ids", userIDs), zap.Error(err))
		return nil, fmt.Errorf("look up users: %w", err)
	}

	existing := make(map[string]struct{}, len(found))
	for _, u := range found {
		existing[u.UserID] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *userRepository) FindRefs(ctx context.Context, userIDs []string) (map[string]model.UserRef, error) {
	if len(userIDs) == 0 {
		return map[string]model.UserRef{}, nil
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	found, err := r.mongoRepo.FindAll(ctx, db.NewFilter().In("user_id", userIDs).Build())
	if err != nil {
		return nil, fmt.Errorf("look up user refs: %w", err)
	}

	refs := make(map[string]model.UserRef, len(found))
	for i := range found {
		refs[found[i].UserID] = found[i].Ref()
	}
	return refs, nil
}

func (r *userRepository) SetOnline(ctx context.Context, userID string, online bool) error {
	if userID == "" {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	now := time.Now()
	result, err := r.mongoRepo.Update(ctx,
		db.NewFilter().Eq("user_id", userID).Build(),
		map[string]interface{}{"is_online": online, "updated_at": now},
	)
	if err != nil {
		r.logger.Error("failed to update online flag",
			zap.String("user_id", userID),
			zap.Bool("online", online),
			zap.Error(err),
		)
		return fmt.Errorf("update online flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	r.logger.Debug("online flag updated",
		zap.String("user_id", userID),
		zap.Bool("online", online),
	)
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user == nil || user.UserID == "" {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if _, err := r.mongoRepo.Create(ctx, *user); err != nil {
		r.logger.Error("failed to insert user", zap.String("user_id", user.UserID), zap.Error(err))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
