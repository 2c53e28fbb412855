package openai

import (
	"fmt"

	fopenai "charm.land/fantasy/providers/openai"
	"github.com/kiranshivaraju/rescueassist/internal/ai/hosted"
	"github.com/kiranshivaraju/rescueassist/internal/config"
)

// NewProvider returns a provider backed by the OpenAI API.
func NewProvider(cfg config.OpenAIConfig) (*hosted.Provider, error) {
	opts := []fopenai.Option{fopenai.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, fopenai.WithBaseURL(cfg.BaseURL))
	}
	p, err := fopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai provider: %w", err)
	}
	return hosted.New("openai", p, cfg.Model), nil
}
