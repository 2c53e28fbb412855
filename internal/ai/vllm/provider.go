package vllm

import (
	"fmt"

	"charm.land/fantasy/providers/openaicompat"
	"github.com/kiranshivaraju/rescueassist/internal/ai/hosted"
	"github.com/kiranshivaraju/rescueassist/internal/config"
)

// NewProvider returns a provider for a vLLM server through its
// OpenAI-compatible endpoint.
func NewProvider(cfg config.VLLMConfig) (*hosted.Provider, error) {
	opts := []openaicompat.Option{openaicompat.WithBaseURL(cfg.BaseURL)}
	if cfg.APIKey != "" {
		opts = append(opts, openaicompat.WithAPIKey(cfg.APIKey))
	}
	p, err := openaicompat.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vllm provider: %w", err)
	}
	return hosted.New("vllm", p, cfg.Model), nil
}
