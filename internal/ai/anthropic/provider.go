package anthropic

import (
	"fmt"

	fanthropic "charm.land/fantasy/providers/anthropic"
	"github.com/kiranshivaraju/rescueassist/internal/ai/hosted"
	"github.com/kiranshivaraju/rescueassist/internal/config"
)

// NewProvider returns a provider backed by the Anthropic Messages API.
func NewProvider(cfg config.AnthropicConfig) (*hosted.Provider, error) {
	p, err := fanthropic.New(fanthropic.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating anthropic provider: %w", err)
	}
	return hosted.New("anthropic", p, cfg.Model), nil
}
