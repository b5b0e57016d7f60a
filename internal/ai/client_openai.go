package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OpenAIClient implements TextGenerator against the OpenAI Responses API.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature *float64
	httpClient  *http.Client
	mu          sync.Mutex
	lastRequest time.Time
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	Timeout     time.Duration
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4.1-mini",
		Timeout: 120 * time.Second,
	}
}

// NewOpenAIClient creates a new OpenAI client with default config.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultOpenAIConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom config.
func NewOpenAIClientWithConfig(config OpenAIConfig) *OpenAIClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &OpenAIClient{
		apiKey:      config.APIKey,
		baseURL:     config.BaseURL,
		model:       model,
		temperature: config.Temperature,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// openAIRequest is the Responses API request body.
type openAIRequest struct {
	Model       string           `json:"model"`
	Input       []openAIMessage  `json:"input"`
	Temperature *float64         `json:"temperature,omitempty"`
	Reasoning   *openAIReasoning `json:"reasoning,omitempty"`
	Text        *openAIText      `json:"text,omitempty"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type string `json:"type"` // "input_text"
	Text string `json:"text"`
}

type openAIReasoning struct {
	Effort string `json:"effort"`
}

type openAIText struct {
	Verbosity string            `json:"verbosity,omitempty"`
	Format    *openAITextFormat `json:"format,omitempty"`
}

type openAITextFormat struct {
	Type   string          `json:"type"` // "json_schema"
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// openAIResponse is the Responses API response body.
type openAIResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// GenerateText sends the exchange and returns the reply text.
func (c *OpenAIClient) GenerateText(ctx context.Context, req Request) (*Result, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	reqBody := openAIRequest{
		Model: c.model,
		Input: []openAIMessage{
			{Role: "system", Content: []openAIContentPart{{Type: "input_text", Text: req.System}}},
			{Role: "user", Content: []openAIContentPart{{Type: "input_text", Text: req.User}}},
		},
	}

	// The gpt-5 family takes reasoning/verbosity instead of temperature.
	if strings.Contains(strings.ToLower(c.model), "gpt-5") {
		effort := req.ReasoningEffort
		if effort == "" {
			effort = "minimal"
		}
		verbosity := req.Verbosity
		if verbosity == "" {
			verbosity = "medium"
		}
		reqBody.Reasoning = &openAIReasoning{Effort: effort}
		reqBody.Text = &openAIText{Verbosity: verbosity}
	} else if c.temperature != nil {
		reqBody.Temperature = c.temperature
	}

	if len(req.Schema) > 0 {
		if reqBody.Text == nil {
			reqBody.Text = &openAIText{}
		}
		reqBody.Text.Format = &openAITextFormat{
			Type:   "json_schema",
			Name:   req.SchemaName,
			Schema: req.Schema,
		}
	}

	// Retry loop for rate limits
	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			time.Sleep(time.Duration(1<<uint(i-1)) * time.Second)
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/responses", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			// Some models reject json_schema formats; retry once without.
			if reqBody.Text != nil && reqBody.Text.Format != nil && resp.StatusCode == http.StatusBadRequest {
				bodyStr := string(body)
				if strings.Contains(bodyStr, "format") || strings.Contains(bodyStr, "json_schema") {
					reqBody.Text.Format = nil
					if reqBody.Text.Verbosity == "" {
						reqBody.Text = nil
					}
					lastErr = fmt.Errorf("model rejected structured output, retrying without schema: %s", bodyStr)
					continue
				}
			}
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var openaiResp openAIResponse
		if err := json.Unmarshal(body, &openaiResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if openaiResp.Error != nil {
			return nil, fmt.Errorf("API error: %s", openaiResp.Error.Message)
		}

		text, ok := extractOutputText(openaiResp)
		if !ok {
			return nil, fmt.Errorf("no completion returned")
		}

		result := &Result{Text: strings.TrimSpace(text)}
		if openaiResp.Usage != nil {
			tokens := openaiResp.Usage.OutputTokens
			result.OutputTokens = &tokens
		}
		return result, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// extractOutputText walks the output items for the first text block.
func extractOutputText(resp openAIResponse) (string, bool) {
	for _, item := range resp.Output {
		for _, content := range item.Content {
			if content.Type == "output_text" && content.Text != "" {
				return content.Text, true
			}
		}
	}
	for _, item := range resp.Output {
		for _, content := range item.Content {
			if content.Text != "" {
				return content.Text, true
			}
		}
	}
	return "", false
}

// Name identifies the provider.
func (c *OpenAIClient) Name() string { return "openai" }

// Model returns the current model.
func (c *OpenAIClient) Model() string { return c.model }

// SetModel changes the model used for drafting.
func (c *OpenAIClient) SetModel(model string) { c.model = model }
