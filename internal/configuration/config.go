package configuration

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                     string `json:"uri"`
	Database                string `json:"database"`
	UsersCollection         string `json:"usersCollection"`
	ConversationsCollection string `json:"conversationsCollection"`
	MessagesCollection      string `json:"messagesCollection"`
	NotificationsCollection string `json:"notificationsCollection"`
	SocketRoute             string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort    int `json:"app_port"`
	SocketPort int `json:"socket_port"`
}

type AuthConfig struct {
	JwtSecret     string `json:"jwt_secret"`
	JwtIssuer     string `json:"jwt_issuer"`
	TokenValidity string `json:"token_validity"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Auth         AuthConfig   `json:"auth"`
}

// Validity parses the configured JWT lifetime, defaulting to 24h.
func (a AuthConfig) Validity() time.Duration {
	if a.TokenValidity == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(a.TokenValidity)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func LoadConfig(config_path string) (*Config, error) {
	// Secrets may come from a local .env file in development.
	_ = godotenv.Load()

	file, err := os.ReadFile(config_path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)

	return &config, nil
}

// applyEnvOverrides lets deployment environments override file values
// without editing the config file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		config.ChatDatabase.Uri = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		config.ChatDatabase.Database = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Auth.JwtSecret = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.AppPort = port
		}
	}
	if v := os.Getenv("SOCKET_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.SocketPort = port
		}
	}
}
