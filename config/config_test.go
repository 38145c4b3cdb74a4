package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.DevMode)
	assert.False(t, cfg.WebhookEnabled())
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "todofrog.db", cfg.DBURL)
	assert.Equal(t, ProviderStatic, cfg.LLM.Provider)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Workers)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "BOT_TOKEN=from-file\nDEV_MODE=false\nWEBHOOK_URL=https://frog.example.com/webhook\nWORKERS=2\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("WORKERS", "7")
	t.Setenv("LLM_PROVIDER", "OpenAI")

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.BotToken)
	assert.False(t, cfg.DevMode)
	assert.True(t, cfg.WebhookEnabled())
	assert.Equal(t, "https://frog.example.com/webhook", cfg.WebhookURL)
	assert.Equal(t, 7, cfg.Workers, "environment wins over the file")
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BotToken: "token",
			DevMode:  true,
			HTTPPort: 8080,
			Workers:  1,
			LLM:      LLMConfig{Provider: ProviderStatic},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := valid()
		cfg.BotToken = ""
		assert.ErrorContains(t, cfg.Validate(), "BOT_TOKEN")
	})

	t.Run("webhook without url", func(t *testing.T) {
		cfg := valid()
		cfg.UseWebhook = true
		assert.ErrorContains(t, cfg.Validate(), "WEBHOOK_URL")
	})

	t.Run("provider without key", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.Provider = ProviderGemini
		assert.ErrorContains(t, cfg.Validate(), "LLM_API_KEY")
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.Provider = "yandexgpt"
		assert.ErrorContains(t, cfg.Validate(), "unknown LLM_PROVIDER")
	})
}
