package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Provider(t *testing.T) {
	t.Run("OPENAI_API_KEY sets provider if empty", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "sk-test", cfg.AI.APIKey)
		assert.Equal(t, "openai", cfg.AI.Provider)
	})

	t.Run("GEMINI_API_KEY sets provider if empty", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("GEMINI_API_KEY", "gm-test")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gm-test", cfg.AI.APIKey)
		assert.Equal(t, "gemini", cfg.AI.Provider)
	})

	t.Run("OpenAI wins when both keys are set", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("GEMINI_API_KEY", "gm-test")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "sk-test", cfg.AI.APIKey)
		assert.Equal(t, "openai", cfg.AI.Provider)
	})

	t.Run("explicit provider keeps its own key", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("GEMINI_API_KEY", "gm-test")

		cfg := &Config{AI: AIConfig{Provider: "gemini"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gm-test", cfg.AI.APIKey)
		assert.Equal(t, "gemini", cfg.AI.Provider)
	})
}

func TestEnvOverrides_ModelAndTemperature(t *testing.T) {
	t.Run("OPENAI_RESPONSES_MODEL applies to openai only", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_RESPONSES_MODEL", "gpt-5-mini")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gpt-5-mini", cfg.AI.Model)
	})

	t.Run("GEMINI_MODEL applies to gemini only", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("GEMINI_API_KEY", "gm-test")
		t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
		t.Setenv("OPENAI_RESPONSES_MODEL", "gpt-5-mini")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
	})

	t.Run("temperature parsed from env", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_RESPONSES_TEMPERATURE", "0.9")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 0.9, cfg.AI.Temperature)
	})

	t.Run("unparseable temperature ignored", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_RESPONSES_TEMPERATURE", "warm")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 0.4, cfg.AI.Temperature)
	})
}

func TestEnvOverrides_PathsAndAddr(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")
	t.Setenv("CAREERDESK_ADDR", "127.0.0.1:8080")
	t.Setenv("CAREERDESK_DATA", "/srv/career/data")

	cfg := Default()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/opt/chrome/chrome", cfg.PDF.ChromePath)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "/srv/career/data", cfg.Data.Dir)
}
