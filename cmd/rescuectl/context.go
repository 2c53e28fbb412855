package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/ai/providers"
	"github.com/kiranshivaraju/rescueassist/internal/config"
	"github.com/kiranshivaraju/rescueassist/internal/flows"
	"github.com/kiranshivaraju/rescueassist/internal/store"
)

// commandContext lazily builds what a command needs so that commands which
// never call a model do not require AI configuration.
type commandContext struct {
	providerFlag *string

	mu  sync.Mutex
	cfg *config.Config
	svc *flows.Service
}

func newCommandContext(providerFlag *string) *commandContext {
	return &commandContext{providerFlag: providerFlag}
}

func (c *commandContext) config() (*config.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return c.cfg, nil
	}
	if p := *c.providerFlag; p != "" {
		if err := os.Setenv("AI_PROVIDER", p); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) flowService() (*flows.Service, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	provider, err := providers.New(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create AI provider: %w", err)
	}
	reg, err := flows.NewRegistry()
	if err != nil {
		return nil, err
	}
	iv := ai.NewInvoker(provider, reg, nil, ai.Options{
		Timeout:       cfg.AI.InferenceTimeout,
		MaxRetries:    cfg.AI.MaxRetries,
		RetryInterval: cfg.AI.RetryInterval,
	})
	c.svc = flows.NewService(iv, flows.Pricing{
		StartFee:  cfg.Pricing.StartFee,
		CostPerKm: cfg.Pricing.CostPerKm,
	})
	return c.svc, nil
}

// openStore reads from PostgreSQL when DATABASE_URL is set and from the demo
// data otherwise. The schema is owned by the server, so no migrations run here.
func openStore(ctx context.Context) (store.Store, func(), error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return store.NewDemoStore(), func() {}, nil
	}
	pool, err := store.Connect(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 2})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return store.NewPostgresStore(pool), pool.Close, nil
}
