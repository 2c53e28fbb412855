package hosted

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"charm.land/fantasy"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// toolAdapter exposes a models.Tool as a fantasy.AgentTool. The tool schema is
// dynamic JSON, so fantasy's generic NewAgentTool does not fit.
type toolAdapter struct {
	tool  models.Tool
	calls *atomic.Int64
	opts  fantasy.ProviderOptions
}

func agentTools(tools []models.Tool, calls *atomic.Int64) []fantasy.AgentTool {
	out := make([]fantasy.AgentTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, &toolAdapter{tool: t, calls: calls})
	}
	return out
}

func (a *toolAdapter) Info() fantasy.ToolInfo {
	var s struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	_ = json.Unmarshal(a.tool.InputSchema, &s)
	if s.Properties == nil {
		s.Properties = map[string]any{}
	}
	return fantasy.ToolInfo{
		Name:        a.tool.Name,
		Description: a.tool.Description,
		Parameters:  s.Properties,
		Required:    s.Required,
	}
}

// Run executes the handler. Handler failures go back to the model as an error
// result instead of aborting generation.
func (a *toolAdapter) Run(ctx context.Context, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
	a.calls.Add(1)
	out, err := a.tool.Handler(ctx, json.RawMessage(call.Input))
	if err != nil {
		return fantasy.NewTextErrorResponse(err.Error()), nil
	}
	return fantasy.NewTextResponse(string(out)), nil
}

func (a *toolAdapter) IsParallel() bool { return false }

func (a *toolAdapter) ProviderOptions() fantasy.ProviderOptions { return a.opts }

func (a *toolAdapter) SetProviderOptions(opts fantasy.ProviderOptions) { a.opts = opts }
