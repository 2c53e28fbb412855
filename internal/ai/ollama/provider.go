package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/config"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// Provider implements models.ModelProvider using Ollama's /api/chat endpoint.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 4
	}
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "ollama" }

type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Images    []string   `json:"images,omitempty"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
}

type toolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Tools    []toolSpec      `json:"tools,omitempty"`
	Options  *chatOptions    `json:"options,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Generate sends the prompt with the output schema as the response format.
// Tool calls requested by the model are executed synchronously and their
// results fed back, for at most MaxToolRounds rounds.
func (p *Provider) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	user := chatMessage{Role: "user", Content: req.Text()}
	for _, m := range req.Attachments() {
		if !strings.HasPrefix(m.MediaType, "image/") {
			return models.GenerateResponse{}, fmt.Errorf("%w: ollama accepts images only, got %s", ai.ErrUnsupportedMedia, m.MediaType)
		}
		user.Images = append(user.Images, base64.StdEncoding.EncodeToString(m.Data))
	}

	handlers := make(map[string]models.ToolHandler, len(req.Tools))
	var tools []toolSpec
	for _, t := range req.Tools {
		handlers[t.Name] = t.Handler
		tools = append(tools, toolSpec{
			Type:     "function",
			Function: toolFunction{Name: t.Name, Description: t.Description, Parameters: t.InputSchema},
		})
	}

	chat := chatRequest{
		Model:    p.cfg.Model,
		Messages: []chatMessage{user},
		Format:   req.OutputSchema,
		Tools:    tools,
	}
	if req.Temperature != nil {
		chat.Options = &chatOptions{Temperature: req.Temperature}
	}

	calls := 0
	for round := 0; round <= p.cfg.MaxToolRounds; round++ {
		resp, err := p.chat(ctx, chat)
		if err != nil {
			return models.GenerateResponse{}, err
		}

		if len(resp.Message.ToolCalls) == 0 {
			out := bytes.TrimSpace([]byte(resp.Message.Content))
			return models.GenerateResponse{Output: out, Model: resp.Model, ToolCalls: calls}, nil
		}

		chat.Messages = append(chat.Messages, resp.Message)
		for _, tc := range resp.Message.ToolCalls {
			calls++
			chat.Messages = append(chat.Messages, chatMessage{
				Role:     "tool",
				ToolName: tc.Function.Name,
				Content:  runTool(ctx, handlers[tc.Function.Name], tc),
			})
		}
	}
	return models.GenerateResponse{}, fmt.Errorf("%w: still calling tools after %d rounds", ai.ErrInvalidResponse, p.cfg.MaxToolRounds)
}

// runTool returns the tool result as message content. Unknown tools and
// handler failures are reported to the model rather than aborting.
func runTool(ctx context.Context, handler models.ToolHandler, tc toolCall) string {
	if handler == nil {
		return fmt.Sprintf(`{"error":"unknown tool %q"}`, tc.Function.Name)
	}
	out, err := handler(ctx, tc.Function.Arguments)
	if err != nil {
		b, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(b)
	}
	return string(out)
}

func (p *Provider) chat(ctx context.Context, chat chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(chat)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(p.cfg.BaseURL, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, ai.Classify(p.Name(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &ai.TransportError{Provider: p.Name(), Err: fmt.Errorf("%w: status %d", ai.ErrProviderUnavailable, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ai.ErrProviderUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("%w: decoding ollama response: %v", ai.ErrInvalidResponse, err)
	}
	return &chatResp, nil
}

var _ models.ModelProvider = (*Provider)(nil)
