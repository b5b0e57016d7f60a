// Package config loads careerdesk configuration from YAML with
// environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all careerdesk configuration.
type Config struct {
	// HTTP server
	Server ServerConfig `yaml:"server"`

	// Data locations
	Data DataConfig `yaml:"data"`

	// AI drafting
	AI AIConfig `yaml:"ai"`

	// PDF export
	PDF PDFConfig `yaml:"pdf"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	IdleTimeout     string `yaml:"idle_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DataConfig configures where career data lives on disk.
type DataConfig struct {
	// Dir holds master.json, prompts.json, generated_resumes.json and
	// the generated/ asset tree.
	Dir string `yaml:"dir"`

	// JobsDir holds one JSON config per job plus template.json.
	JobsDir string `yaml:"jobs_dir"`

	// DistDir receives offline builds from the build command.
	DistDir string `yaml:"dist_dir"`

	// Optional overrides for the embedded theme CSS and base template.
	ThemePath    string `yaml:"theme_path"`
	TemplatePath string `yaml:"template_path"`
}

// AIConfig configures the drafting provider.
type AIConfig struct {
	Provider    string  `yaml:"provider"` // openai, gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

// PDFConfig configures headless-Chrome PDF export.
type PDFConfig struct {
	ChromePath string `yaml:"chrome_path"`
	Timeout    string `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5050",
			ReadTimeout:     "15s",
			WriteTimeout:    "120s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "10s",
		},

		Data: DataConfig{
			Dir:     "data",
			JobsDir: "jobs",
			DistDir: "dist",
		},

		AI: AIConfig{
			Provider:    "",
			Model:       "",
			Temperature: 0.4,
			Timeout:     "120s",
		},

		PDF: PDFConfig{
			Timeout: "60s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields
// defaults. A .env file in the working directory is read first so API
// keys set there shape the environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	// An explicit provider keeps its own key. Otherwise detect from the
	// environment, OpenAI first.
	switch c.AI.Provider {
	case "openai":
		if openaiKey != "" {
			c.AI.APIKey = openaiKey
		}
	case "gemini":
		if geminiKey != "" {
			c.AI.APIKey = geminiKey
		}
	default:
		if openaiKey != "" {
			c.AI.APIKey = openaiKey
			c.AI.Provider = "openai"
		} else if geminiKey != "" {
			c.AI.APIKey = geminiKey
			c.AI.Provider = "gemini"
		}
	}

	if model := os.Getenv("OPENAI_RESPONSES_MODEL"); model != "" && c.AI.Provider == "openai" {
		c.AI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" && c.AI.Provider == "gemini" {
		c.AI.Model = model
	}
	if raw := os.Getenv("OPENAI_RESPONSES_TEMPERATURE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			c.AI.Temperature = v
		}
	}

	if path := os.Getenv("CHROME_PATH"); path != "" {
		c.PDF.ChromePath = path
	}
	if addr := os.Getenv("CAREERDESK_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if dir := os.Getenv("CAREERDESK_DATA"); dir != "" {
		c.Data.Dir = dir
	}
}

// GetAITimeout returns the AI request timeout as a duration.
func (c *Config) GetAITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetPDFTimeout returns the PDF export timeout as a duration.
func (c *Config) GetPDFTimeout() time.Duration {
	d, err := time.ParseDuration(c.PDF.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.WriteTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetIdleTimeout returns the server idle timeout as a duration.
func (c *Config) GetIdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the graceful shutdown window as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ValidProviders lists the supported AI providers. Empty means AI
// drafting is disabled until a key is configured.
var ValidProviders = []string{"", "openai", "gemini"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.AI.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid AI provider: %s (valid: openai, gemini)", c.AI.Provider)
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("AI temperature %.2f out of range [0, 2]", c.AI.Temperature)
	}

	return nil
}
