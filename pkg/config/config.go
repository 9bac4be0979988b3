package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
	"github.com/widescopeindustries/ai-receptionist/pkg/notification"
	"github.com/widescopeindustries/ai-receptionist/pkg/utils"
)

// Config main configuration structure
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          logger.LogConfig   `mapstructure:"log"`
	Services     ServicesConfig     `mapstructure:"services"`
	Conversation ConversationConfig `mapstructure:"conversation"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Name    string `env:"SERVER_NAME"`
	BaseURL string `env:"BASE_URL"`
	Addr    string `env:"ADDR"`
	Mode    string `env:"MODE"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER"`
	DSN    string `env:"DSN"`
}

// ServicesConfig external service configuration
type ServicesConfig struct {
	LLM              LLMConfig               `mapstructure:"llm"`
	Mail             notification.MailConfig `mapstructure:"mail"`
	Calendar         CalendarConfig          `mapstructure:"calendar"`
	NotifyEmail      string                  `env:"NOTIFY_EMAIL"`
	NotifyWebhookURL string                  `env:"NOTIFY_WEBHOOK_URL"`
}

// LLMConfig LLM service configuration
type LLMConfig struct {
	Provider    string        `env:"LLM_PROVIDER"` // openai, qwen, etc.
	APIKey      string        `env:"LLM_API_KEY"`
	BaseURL     string        `env:"LLM_BASE_URL"`
	Model       string        `env:"LLM_MODEL"`
	Temperature float32       `env:"LLM_TEMPERATURE"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS"`
	Timeout     time.Duration `env:"LLM_TIMEOUT"`
}

// CalendarConfig calendar booking configuration
type CalendarConfig struct {
	CredentialsFile string `env:"CALENDAR_CREDENTIALS_FILE"`
	CalendarID      string `env:"CALENDAR_ID"`
	TimeZone        string `env:"CALENDAR_TIMEZONE"`
}

// ConversationConfig per-call conversation limits
type ConversationConfig struct {
	Greeting        string        `env:"GREETING"`
	MaxTurns        int           `env:"MAX_TURNS"`
	MaxDuration     time.Duration `env:"MAX_DURATION"`
	NoInputLimit    int           `env:"NO_INPUT_LIMIT"`
	MaxLLMFailures  int           `env:"MAX_LLM_FAILURES"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT"`
}

var GlobalConfig *Config

func Load() error {
	// 1. Load .env file based on environment (don't error if it doesn't exist, use default values)
	env := os.Getenv("APP_ENV")
	err := utils.LoadEnv(env)
	if err != nil {
		// Only log when .env file doesn't exist, don't affect startup
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	// 2. Load global configuration
	GlobalConfig = &Config{
		Server: ServerConfig{
			Name:    getStringOrDefault("SERVER_NAME", "AI Always Answer"),
			BaseURL: getStringOrDefault("BASE_URL", ""),
			Addr:    getStringOrDefault("ADDR", ":3000"),
			Mode:    getStringOrDefault("MODE", "development"),
		},
		Database: DatabaseConfig{
			Driver: getStringOrDefault("DB_DRIVER", "sqlite"),
			DSN:    getStringOrDefault("DSN", "./receptionist.db"),
		},
		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},
		Services: ServicesConfig{
			LLM: LLMConfig{
				Provider:    getStringOrDefault("LLM_PROVIDER", "openai"),
				APIKey:      getStringOrDefault("LLM_API_KEY", ""),
				BaseURL:     getStringOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
				Model:       getStringOrDefault("LLM_MODEL", "gpt-4-turbo-preview"),
				Temperature: float32(getFloatOrDefault("LLM_TEMPERATURE", 0.7)),
				MaxTokens:   getIntOrDefault("LLM_MAX_TOKENS", 150),
				Timeout:     parseDuration(getStringOrDefault("LLM_TIMEOUT", "8s"), 8*time.Second),
			},
			Mail: notification.MailConfig{
				Host:     getStringOrDefault("MAIL_HOST", ""),
				Username: getStringOrDefault("MAIL_USERNAME", ""),
				Password: getStringOrDefault("MAIL_PASSWORD", ""),
				Port:     int64(getIntOrDefault("MAIL_PORT", 587)),
				From:     getStringOrDefault("MAIL_FROM", ""),
			},
			Calendar: CalendarConfig{
				CredentialsFile: getStringOrDefault("CALENDAR_CREDENTIALS_FILE", ""),
				CalendarID:      getStringOrDefault("CALENDAR_ID", "primary"),
				TimeZone:        getStringOrDefault("CALENDAR_TIMEZONE", "America/Chicago"),
			},
			NotifyEmail:      getStringOrDefault("NOTIFY_EMAIL", ""),
			NotifyWebhookURL: getStringOrDefault("NOTIFY_WEBHOOK_URL", ""),
		},
		Conversation: ConversationConfig{
			Greeting:        getStringOrDefault("GREETING", ""),
			MaxTurns:        getIntOrDefault("MAX_TURNS", 20),
			MaxDuration:     parseDuration(getStringOrDefault("MAX_DURATION", "15m"), 15*time.Minute),
			NoInputLimit:    getIntOrDefault("NO_INPUT_LIMIT", 2),
			MaxLLMFailures:  getIntOrDefault("MAX_LLM_FAILURES", 3),
			DispatchTimeout: parseDuration(getStringOrDefault("DISPATCH_TIMEOUT", "8s"), 8*time.Second),
		},
	}
	return nil
}

// Validate validates the configuration. A missing LLM credential is fatal:
// the service must refuse to accept calls at all rather than fail mid-call.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database DSN is required")
	}
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	if c.Services.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Services.LLM.BaseURL == "" {
		return errors.New("LLM base URL is required")
	}
	if c.Conversation.MaxTurns <= 0 {
		return errors.New("max turns must be positive")
	}
	if c.Conversation.MaxDuration <= 0 {
		return errors.New("max duration must be positive")
	}
	return nil
}

// getStringOrDefault gets environment variable value, returns default if empty
func getStringOrDefault(key, defaultValue string) string {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getBoolOrDefault gets boolean environment variable value, returns default if empty
func getBoolOrDefault(key string, defaultValue bool) bool {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return utils.GetBoolEnv(key)
}

// getIntOrDefault gets integer environment variable value, returns default if empty
func getIntOrDefault(key string, defaultValue int) int {
	value := utils.GetIntEnv(key)
	if value == 0 {
		return defaultValue
	}
	return int(value)
}

// getFloatOrDefault gets float environment variable value, returns default if empty
func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return utils.GetFloatEnv(key)
}

// parseDuration parses duration string with default fallback
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}
