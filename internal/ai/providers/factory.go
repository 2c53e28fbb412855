// Package providers selects the model provider named in configuration.
package providers

import (
	"fmt"

	"github.com/kiranshivaraju/rescueassist/internal/ai/anthropic"
	"github.com/kiranshivaraju/rescueassist/internal/ai/gemini"
	"github.com/kiranshivaraju/rescueassist/internal/ai/hosted"
	"github.com/kiranshivaraju/rescueassist/internal/ai/mock"
	"github.com/kiranshivaraju/rescueassist/internal/ai/ollama"
	"github.com/kiranshivaraju/rescueassist/internal/ai/openai"
	"github.com/kiranshivaraju/rescueassist/internal/ai/vllm"
	"github.com/kiranshivaraju/rescueassist/internal/config"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// New constructs the appropriate model provider based on config.
// Called once at startup.
func New(cfg config.AIConfig) (models.ModelProvider, error) {
	var (
		p   *hosted.Provider
		err error
	)
	switch cfg.Provider {
	case "gemini":
		p, err = gemini.NewProvider(cfg.Gemini)
	case "openai":
		p, err = openai.NewProvider(cfg.OpenAI)
	case "anthropic":
		p, err = anthropic.NewProvider(cfg.Anthropic)
	case "vllm":
		p, err = vllm.NewProvider(cfg.VLLM)
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, anthropic, vllm, ollama, mock", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
