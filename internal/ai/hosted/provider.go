// Package hosted adapts charm.land/fantasy language models to models.ModelProvider.
package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"charm.land/fantasy"
	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

const castInstruction = `Convert the answer below into the required JSON structure. Keep every fact from the answer and do not add new ones.

Task:
%s

Answer:
%s`

// Provider implements models.ModelProvider on top of a fantasy provider
// (Gemini, OpenAI, Anthropic or any OpenAI-compatible server).
type Provider struct {
	name     string
	provider fantasy.Provider
	modelID  string
}

func New(name string, provider fantasy.Provider, modelID string) *Provider {
	return &Provider{name: name, provider: provider, modelID: modelID}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Model() string { return p.modelID }

// Generate produces structured output with GenerateObject. When the request
// offers tools, a tool-calling agent answers first and its answer is then cast
// into the output schema.
func (p *Provider) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	var outSchema fantasy.Schema
	if err := json.Unmarshal(req.OutputSchema, &outSchema); err != nil {
		return models.GenerateResponse{}, fmt.Errorf("%s: decoding output schema: %w", req.Flow, err)
	}

	media := req.Attachments()
	if len(req.Tools) > 0 && len(media) > 0 {
		return models.GenerateResponse{}, fmt.Errorf("%s: %w", req.Flow, ai.ErrMediaWithTools)
	}

	model, err := p.provider.LanguageModel(ctx, p.modelID)
	if err != nil {
		return models.GenerateResponse{}, p.classify(req.Flow, err)
	}

	text := req.Text()
	var calls atomic.Int64
	if len(req.Tools) > 0 {
		answer, err := p.runAgent(ctx, model, req, &calls)
		if err != nil {
			return models.GenerateResponse{}, p.classify(req.Flow, err)
		}
		text = fmt.Sprintf(castInstruction, text, answer)
	}

	resp, err := model.GenerateObject(ctx, fantasy.ObjectCall{
		Prompt:            fantasy.Prompt{fantasy.NewUserMessage(text, fileParts(media)...)},
		Schema:            outSchema,
		SchemaName:        req.SchemaName,
		SchemaDescription: req.SchemaDescription,
		Temperature:       req.Temperature,
	})
	if err != nil {
		return models.GenerateResponse{}, p.classify(req.Flow, err)
	}

	out, err := json.Marshal(resp.Object)
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}
	return models.GenerateResponse{Output: out, Model: p.modelID, ToolCalls: int(calls.Load())}, nil
}

func (p *Provider) runAgent(ctx context.Context, model fantasy.LanguageModel, req models.GenerateRequest, calls *atomic.Int64) (string, error) {
	agent := fantasy.NewAgent(model, fantasy.WithTools(agentTools(req.Tools, calls)...))
	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt:      req.Text(),
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}
	return result.Response.Content.Text(), nil
}

// classify maps fantasy failures onto the invocation error taxonomy. An
// object that fails to parse or validate is an output mismatch. Provider
// errors with a status are transient only for 5xx and the statuses fantasy
// itself treats as retryable.
func (p *Provider) classify(flow string, err error) error {
	var noObject *fantasy.NoObjectGeneratedError
	if errors.As(err, &noObject) {
		return &schema.OutputMismatchError{Flow: flow, Details: []string{noObject.Error()}, Raw: noObject.RawText}
	}

	var pe *fantasy.ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode == 0 && pe.Cause != nil:
			return ai.Classify(p.name, fmt.Errorf("%s: %w", pe.Error(), pe.Cause))
		case pe.StatusCode >= http.StatusInternalServerError, pe.IsRetryable():
			return &ai.TransportError{Provider: p.name, Err: fmt.Errorf("%w: status %d: %s", ai.ErrProviderUnavailable, pe.StatusCode, pe.Error())}
		case pe.StatusCode != 0:
			return fmt.Errorf("%s: %w: status %d: %s", p.name, ai.ErrProviderUnavailable, pe.StatusCode, pe.Error())
		}
	}
	return ai.Classify(p.name, err)
}

func fileParts(media []models.Media) []fantasy.FilePart {
	parts := make([]fantasy.FilePart, 0, len(media))
	for i, m := range media {
		parts = append(parts, fantasy.FilePart{
			Filename:  fmt.Sprintf("attachment-%d", i+1),
			Data:      m.Data,
			MediaType: m.MediaType,
		})
	}
	return parts
}

var _ models.ModelProvider = (*Provider)(nil)
