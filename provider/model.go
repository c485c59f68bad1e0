package provider

import (
	"context"
	"iter"
	"strings"

	"github.com/utmux/ag/messages"
)

// Provider streams chat completions from one API endpoint.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) iter.Seq2[string, error]
}

// CompletionParams holds everything a single completion request needs.
type CompletionParams struct {
	// Model is the model identifier sent to the endpoint.
	Model string

	// Messages is the full ordered conversation, system message first when present.
	Messages []messages.Message

	// Extra holds provider specific request fields. They are merged into the
	// request body last, so they override model, messages and stream.
	Extra map[string]any

	// Prevents unkeyed literals
	_ struct{}
}

// Endpoint identifies an OpenAI-compatible API.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

// NormalizedBaseURL returns the base URL with exactly one trailing slash, so
// request paths resolve below it instead of replacing its last segment.
func (e Endpoint) NormalizedBaseURL() string {
	return strings.TrimRight(e.BaseURL, "/") + "/"
}

// Factory returns the provider serving an endpoint.
type Factory func(Endpoint) Provider
