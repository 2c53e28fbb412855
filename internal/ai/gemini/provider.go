// Package gemini connects to Google's Gemini models, the default provider.
package gemini

import (
	"fmt"

	"charm.land/fantasy/providers/google"
	"github.com/kiranshivaraju/rescueassist/internal/ai/hosted"
	"github.com/kiranshivaraju/rescueassist/internal/config"
)

func NewProvider(cfg config.GeminiConfig) (*hosted.Provider, error) {
	p, err := google.New(google.WithGeminiAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini provider: %w", err)
	}
	return hosted.New("gemini", p, cfg.Model), nil
}
