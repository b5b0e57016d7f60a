package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient implements TextGenerator using the Google GenAI SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature *float64
	timeout     time.Duration
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature *float64
	Timeout     time.Duration
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:  apiKey,
		Model:   "gemini-3-flash-preview",
		Timeout: 120 * time.Second,
	}
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: config.Temperature,
		timeout:     config.Timeout,
	}, nil
}

// GenerateText sends the exchange and returns the reply text.
func (c *GeminiClient) GenerateText(ctx context.Context, req Request) (*Result, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if c.temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*c.temperature))
	}
	if len(req.Schema) > 0 {
		// The prompt already embeds the schema; JSON mode keeps the
		// reply parseable without fences.
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("no completion returned")
	}

	out := &Result{Text: text}
	if result.UsageMetadata != nil {
		tokens := int(result.UsageMetadata.CandidatesTokenCount)
		out.OutputTokens = &tokens
	}
	return out, nil
}

// Name identifies the provider.
func (c *GeminiClient) Name() string { return "gemini" }

// Model returns the current model.
func (c *GeminiClient) Model() string { return c.model }
