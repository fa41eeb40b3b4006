package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Config represents the daemon configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	Secrets   SecretsConfig   `json:"secrets"`
	Notifier  NotifierConfig  `json:"notifier"`
	Log       LogConfig       `json:"log"`
	Providers ProvidersConfig `json:"providers"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	APIKey string `json:"api_key"`
}

// SecretsConfig contains credential store settings
type SecretsConfig struct {
	Dir string `json:"dir"`
}

// NotifierConfig selects the alert transport. "desktop" delivers local
// notifications, "telegram" pushes to a chat, "log" only writes the alert
// to the daemon log.
type NotifierConfig struct {
	Kind     string         `json:"kind"`
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig contains Telegram bot settings
type TelegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatID   int64  `json:"chat_id"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

// ProvidersConfig contains per-provider endpoint overrides
type ProvidersConfig struct {
	OpenAIBaseURL string `json:"openai_base_url"`
	CursorBaseURL string `json:"cursor_base_url"`
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}

	if c.Security.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	if c.Secrets.Dir == "" {
		return fmt.Errorf("%w: secrets dir is required", ErrInvalidConfig)
	}

	switch c.Notifier.Kind {
	case "":
		c.Notifier.Kind = "desktop" // default
	case "desktop", "log":
	case "telegram":
		if c.Notifier.Telegram.BotToken == "" || c.Notifier.Telegram.ChatID == 0 {
			return fmt.Errorf("%w: telegram notifier needs bot_token and chat_id", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown notifier kind %q", ErrInvalidConfig, c.Notifier.Kind)
	}

	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	return nil
}

// Load loads configuration from a JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("GAUGED_HOST", "127.0.0.1"),
			Port: getEnvInt("GAUGED_PORT", 8080),
		},
		Database: DatabaseConfig{
			Path: getEnv("GAUGED_DB_PATH", "./gauged.db"),
		},
		Security: SecurityConfig{
			APIKey: getEnv("GAUGED_API_KEY", ""),
		},
		Secrets: SecretsConfig{
			Dir: getEnv("GAUGED_SECRETS_DIR", "./secrets"),
		},
		Notifier: NotifierConfig{
			Kind: getEnv("GAUGED_NOTIFIER", "desktop"),
			Telegram: TelegramConfig{
				BotToken: getEnv("GAUGED_TELEGRAM_BOT_TOKEN", ""),
				ChatID:   int64(getEnvInt("GAUGED_TELEGRAM_CHAT_ID", 0)),
			},
		},
		Log: LogConfig{
			Format: getEnv("GAUGED_LOG_FORMAT", "text"),
			Level:  getEnv("GAUGED_LOG_LEVEL", "info"),
		},
		Providers: ProvidersConfig{
			OpenAIBaseURL: getEnv("GAUGED_OPENAI_BASE_URL", ""),
			CursorBaseURL: getEnv("GAUGED_CURSOR_BASE_URL", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}
