package ai

import (
	"fmt"
	"time"

	"careerdesk/internal/config"
)

// New builds a TextGenerator from the resolved AI config. It returns
// ErrNotConfigured when no provider key is available so callers can run
// with drafting disabled.
func New(cfg config.AIConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	temperature := cfg.Temperature
	timeout := 120 * time.Second
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		timeout = d
	}

	switch cfg.Provider {
	case "openai", "":
		openaiCfg := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.Model != "" {
			openaiCfg.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			openaiCfg.BaseURL = cfg.BaseURL
		}
		openaiCfg.Temperature = &temperature
		openaiCfg.Timeout = timeout
		return NewOpenAIClientWithConfig(openaiCfg), nil

	case "gemini":
		geminiCfg := DefaultGeminiConfig(cfg.APIKey)
		if cfg.Model != "" {
			geminiCfg.Model = cfg.Model
		}
		geminiCfg.Temperature = &temperature
		geminiCfg.Timeout = timeout
		return NewGeminiClient(geminiCfg)

	default:
		return nil, fmt.Errorf("unknown AI provider: %s (valid: openai, gemini)", cfg.Provider)
	}
}
