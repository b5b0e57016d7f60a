// Package ai drafts resume packages, project entries, and cover letters
// by calling an LLM provider over the master career data.
package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotConfigured reports that no provider API key is available.
// Handlers surface it verbatim.
var ErrNotConfigured = errors.New("AI drafting is not configured; set OPENAI_API_KEY or GEMINI_API_KEY in .env")

// TextGenerator is the provider interface drafting calls go through.
type TextGenerator interface {
	// GenerateText sends one system+user exchange and returns the reply.
	GenerateText(ctx context.Context, req Request) (*Result, error)

	// Name identifies the provider for logs and error messages.
	Name() string

	// Model returns the model in use.
	Model() string
}

// Request carries one drafting exchange. SchemaName/Schema, when set, ask
// the provider to constrain output to the given JSON schema; providers
// without schema enforcement fall back to plain JSON mode, so callers
// still validate the reply. ReasoningEffort and Verbosity only apply to
// models that trade sampling temperature for reasoning controls.
type Request struct {
	System          string
	User            string
	SchemaName      string
	Schema          json.RawMessage
	ReasoningEffort string
	Verbosity       string
}

// Result is one provider reply.
type Result struct {
	Text string

	// OutputTokens is the provider-reported completion token count,
	// nil when the provider omits usage data.
	OutputTokens *int
}
