// Package config loads todofrog settings from defaults, an optional dotenv
// file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present in the working directory.
const DefaultEnvFile = ".env"

// LLM provider names accepted in LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// Config holds all application settings.
type Config struct {
	BotToken      string
	DevMode       bool
	UseWebhook    bool
	WebhookURL    string
	WebhookSecret string
	HTTPPort      int

	DBURL   string
	DBDebug bool

	RedisAddr       string
	RedisPassword   string
	ConversationTTL time.Duration

	LLM LLMConfig

	TaskListImage string
	Workers       int

	LogLevel  string
	LogFormat string
}

// LLMConfig configures the emoji text-generation collaborator.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	StaticEmoji string
}

// WebhookEnabled reports whether updates arrive through the HTTP webhook
// instead of long polling.
func (c *Config) WebhookEnabled() bool {
	return !c.DevMode || c.UseWebhook
}

// Load reads configuration using envFile (ignored when missing) and the
// environment. Environment variables win over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		BotToken:      v.GetString("bot_token"),
		DevMode:       v.GetBool("dev_mode"),
		UseWebhook:    v.GetBool("use_webhook"),
		WebhookURL:    v.GetString("webhook_url"),
		WebhookSecret: v.GetString("webhook_secret"),
		HTTPPort:      v.GetInt("http_port"),

		DBURL:   v.GetString("db_url"),
		DBDebug: v.GetBool("db_debug"),

		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		ConversationTTL: v.GetDuration("conversation_ttl"),

		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm_provider")),
			APIKey:      v.GetString("llm_api_key"),
			Model:       v.GetString("llm_model"),
			BaseURL:     v.GetString("llm_base_url"),
			Temperature: v.GetFloat64("llm_temperature"),
			Timeout:     v.GetDuration("generation_timeout"),
			StaticEmoji: v.GetString("llm_static_emoji"),
		},

		TaskListImage: v.GetString("task_list_image"),
		Workers:       v.GetInt("workers"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
	}

	return cfg, nil
}

// Validate checks settings that the serve command depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	if c.WebhookEnabled() && c.WebhookURL == "" {
		errs = append(errs, errors.New("WEBHOOK_URL is required when the webhook is enabled"))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("LLM_API_KEY is required for provider %q", c.LLM.Provider))
		}
	case ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("dev_mode", true)
	v.SetDefault("use_webhook", false)
	v.SetDefault("webhook_url", "")
	v.SetDefault("webhook_secret", "")
	v.SetDefault("http_port", 8080)

	v.SetDefault("db_url", "todofrog.db")
	v.SetDefault("db_debug", false)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("conversation_ttl", time.Duration(0))

	v.SetDefault("llm_provider", ProviderStatic)
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_temperature", 0.3)
	v.SetDefault("generation_timeout", 15*time.Second)
	v.SetDefault("llm_static_emoji", "🐸")

	v.SetDefault("task_list_image", "")
	v.SetDefault("workers", 5)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}
