// Package models contains shared data models used across the RescueAssist codebase.
package models

import (
	"context"
	"encoding/json"
	"strings"
)

// ModelProvider is the core interface that all generative model integrations must implement.
// Never call specific providers directly — always inject this interface.
type ModelProvider interface {
	// Generate sends a rendered prompt to the model and returns its structured output.
	// When Tools are set the provider executes tool calls until the model produces
	// a final answer.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	// Name returns the provider identifier (e.g., "gemini", "ollama").
	Name() string
}

// Part is one segment of a rendered prompt: either text or an inline media attachment.
type Part struct {
	Text  string
	Media *Media
}

// Media is a binary attachment sent inline with a prompt.
type Media struct {
	MediaType string
	Data      []byte
}

// GenerateRequest is the input to a single model invocation.
type GenerateRequest struct {
	Flow              string
	Parts             []Part
	OutputSchema      json.RawMessage
	SchemaName        string
	SchemaDescription string
	Temperature       *float64
	Tools             []Tool
}

// Text joins all text parts of the request in order.
func (r GenerateRequest) Text() string {
	var b strings.Builder
	for _, p := range r.Parts {
		if p.Media == nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Attachments returns the media parts of the request in order.
func (r GenerateRequest) Attachments() []Media {
	var out []Media
	for _, p := range r.Parts {
		if p.Media != nil {
			out = append(out, *p.Media)
		}
	}
	return out
}

// GenerateResponse carries the raw JSON produced by the model. It is not yet
// validated against the output schema.
type GenerateResponse struct {
	Output    json.RawMessage
	Model     string
	ToolCalls int
}

// ToolHandler executes a model-requested tool call synchronously.
// A "no match" outcome must be encoded in the returned JSON, not as an error.
type ToolHandler func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Tool is a function the model may call mid-generation.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     ToolHandler
}
