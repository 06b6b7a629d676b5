package configuration

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/auth"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/db"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/handler"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/hub"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/repo"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	AuthHandler         handler.AuthHandler
	ChatHandler         handler.ChatHandler
	NotificationHandler handler.NotificationHandler
	MonitorHandler      handler.MonitorHandler
	Authenticator       *auth.Authenticator
	Hub                 *hub.Hub
	Config              Config
	Logger              *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	indexCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.EnsureChatIndexes(indexCtx, con,
		config.ChatDatabase.ConversationsCollection,
		config.ChatDatabase.MessagesCollection,
		config.ChatDatabase.UsersCollection,
	); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	logger, _ := zap.NewProduction()

	userRepo := repo.NewUserRepository(con, config.ChatDatabase.UsersCollection, logger)
	conversationRepo := repo.NewConversationRepository(con, config.ChatDatabase.ConversationsCollection, logger)
	messageRepo := repo.NewMessageRepository(con, config.ChatDatabase.MessagesCollection, logger)
	notificationRepo := repo.NewNotificationRepository(con, config.ChatDatabase.NotificationsCollection, logger)

	chatService := service.NewChatService(userRepo, conversationRepo, messageRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	presence := hub.NewPresence(userRepo, logger)
	h := hub.NewHub(presence, chatService)

	// The hub is the live-delivery transport for both services.
	chatService.SetPusher(h)
	notificationService.SetPusher(h)

	authenticator := auth.NewAuthenticator(config.Auth.JwtSecret, config.Auth.JwtIssuer, config.Auth.Validity())

	monitorService := hub.NewMonitorService(h)

	return &Container{
		AuthHandler:         handler.NewAuthHandler(userRepo, authenticator),
		ChatHandler:         handler.NewChatHandler(chatService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		MonitorHandler:      handler.NewMonitorHandler(monitorService),
		Authenticator:       authenticator,
		Hub:                 h,
		Config:              *config,
		Logger:              logger,
		mongoClient:         con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
