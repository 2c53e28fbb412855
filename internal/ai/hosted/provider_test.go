package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"charm.land/fantasy"
	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/prompt"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleTool(handler models.ToolHandler) models.Tool {
	return models.Tool{
		Name:        "getVehicleInfoByLicensePlate",
		Description: "Hämtar fordonsdata för ett registreringsnummer",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"licensePlate":{"type":"string"}},"required":["licensePlate"]}`),
		Handler:     handler,
	}
}

func TestToolAdapter_Info(t *testing.T) {
	a := &toolAdapter{tool: vehicleTool(nil), calls: new(atomic.Int64)}
	info := a.Info()

	assert.Equal(t, "getVehicleInfoByLicensePlate", info.Name)
	assert.Contains(t, info.Parameters, "licensePlate")
	assert.Equal(t, []string{"licensePlate"}, info.Required)
	assert.False(t, a.IsParallel())
}

func TestToolAdapter_InfoWithoutSchema(t *testing.T) {
	tool := vehicleTool(nil)
	tool.InputSchema = nil
	a := &toolAdapter{tool: tool, calls: new(atomic.Int64)}

	assert.NotNil(t, a.Info().Parameters)
}

func TestToolAdapter_Run(t *testing.T) {
	calls := new(atomic.Int64)
	var got json.RawMessage
	a := &toolAdapter{
		tool: vehicleTool(func(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
			got = input
			return json.RawMessage(`{"found":false}`), nil
		}),
		calls: calls,
	}

	resp, err := a.Run(context.Background(), fantasy.ToolCall{Input: `{"licensePlate":"XYZ 999"}`})
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.Equal(t, `{"found":false}`, resp.Content)
	assert.JSONEq(t, `{"licensePlate":"XYZ 999"}`, string(got))
	assert.Equal(t, int64(1), calls.Load())
}

func TestToolAdapter_RunHandlerErrorIsNotFatal(t *testing.T) {
	a := &toolAdapter{
		tool: vehicleTool(func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
			return nil, errors.New("licensePlate is required")
		}),
		calls: new(atomic.Int64),
	}

	resp, err := a.Run(context.Background(), fantasy.ToolCall{Input: `{}`})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Content, "licensePlate is required")
}

func TestGenerate_RejectsMediaWithTools(t *testing.T) {
	p := New("gemini", nil, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), models.GenerateRequest{
		Flow: "generateInsuranceReport",
		Parts: []models.Part{
			{Text: "Skriv en skadeanmälan."},
			{Media: &models.Media{MediaType: "image/png", Data: []byte{0x89}}},
		},
		OutputSchema: json.RawMessage(`{"type":"object"}`),
		Tools:        []models.Tool{vehicleTool(nil)},
	})
	assert.ErrorIs(t, err, ai.ErrMediaWithTools)
}

func TestGenerate_InvalidOutputSchema(t *testing.T) {
	p := New("gemini", nil, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), models.GenerateRequest{
		Flow:         "categorizeJob",
		OutputSchema: json.RawMessage(`not a schema`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output schema")
}

func TestFileParts(t *testing.T) {
	parts := fileParts([]models.Media{
		{MediaType: "image/jpeg", Data: []byte{1}},
		{MediaType: "audio/webm", Data: []byte{2}},
	})
	require.Len(t, parts, 2)
	assert.Equal(t, "attachment-1", parts[0].Filename)
	assert.Equal(t, "audio/webm", parts[1].MediaType)
}

func TestProvider_NameAndModel(t *testing.T) {
	p := New("anthropic", nil, "claude-sonnet-4-5-20250929")
	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, "claude-sonnet-4-5-20250929", p.Model())
}

// --- fake fantasy model ---

type fakeModel struct {
	objectCalls atomic.Int32
	object      func(call fantasy.ObjectCall) (*fantasy.ObjectResponse, error)
}

func (m *fakeModel) Generate(context.Context, fantasy.Call) (*fantasy.Response, error) {
	return nil, errors.New("text generation not scripted")
}

func (m *fakeModel) Stream(context.Context, fantasy.Call) (fantasy.StreamResponse, error) {
	return nil, errors.New("streaming not scripted")
}

func (m *fakeModel) GenerateObject(_ context.Context, call fantasy.ObjectCall) (*fantasy.ObjectResponse, error) {
	m.objectCalls.Add(1)
	return m.object(call)
}

func (m *fakeModel) StreamObject(context.Context, fantasy.ObjectCall) (fantasy.ObjectStreamResponse, error) {
	return nil, errors.New("streaming not scripted")
}

func (m *fakeModel) Provider() string { return "fake" }

func (m *fakeModel) Model() string { return "fake-1" }

type fakeProvider struct {
	model *fakeModel
}

func (p fakeProvider) Name() string { return "fake" }

func (p fakeProvider) LanguageModel(context.Context, string) (fantasy.LanguageModel, error) {
	return p.model, nil
}

func failingObject(err error) *fakeModel {
	return &fakeModel{object: func(fantasy.ObjectCall) (*fantasy.ObjectResponse, error) { return nil, err }}
}

func categorizeRequest() models.GenerateRequest {
	return models.GenerateRequest{
		Flow:         "categorizeJob",
		Parts:        []models.Part{{Text: "Beskrivning: punktering"}},
		OutputSchema: json.RawMessage(`{"type":"object","properties":{"category":{"type":"string"}},"required":["category"]}`),
		SchemaName:   "categorizeJobOutput",
	}
}

func TestGenerate_StructuredOutput(t *testing.T) {
	model := &fakeModel{object: func(call fantasy.ObjectCall) (*fantasy.ObjectResponse, error) {
		assert.Equal(t, "categorizeJobOutput", call.SchemaName)
		assert.Contains(t, call.Schema.Properties, "category")
		return &fantasy.ObjectResponse{Object: map[string]any{"category": "Punktering"}}, nil
	}}
	p := New("gemini", fakeProvider{model: model}, "gemini-2.0-flash")

	resp, err := p.Generate(context.Background(), categorizeRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Punktering"}`, string(resp.Output))
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
}

func TestGenerate_UnparsableObjectIsOutputMismatch(t *testing.T) {
	p := New("gemini", fakeProvider{model: failingObject(&fantasy.NoObjectGeneratedError{
		RawText:    "Jag vet inte",
		ParseError: errors.New("invalid character 'J' looking for beginning of value"),
	})}, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), categorizeRequest())

	var om *schema.OutputMismatchError
	require.ErrorAs(t, err, &om)
	assert.Equal(t, "categorizeJob", om.Flow)
	assert.Equal(t, "Jag vet inte", om.Raw)
	require.Len(t, om.Details, 1)
	assert.Contains(t, om.Details[0], "invalid character")

	var te *ai.TransportError
	assert.False(t, errors.As(err, &te))
}

func TestGenerate_ProviderErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		sentinel  error
	}{
		{"server error", &fantasy.ProviderError{Message: "overloaded", StatusCode: 503}, true, ai.ErrProviderUnavailable},
		{"rate limited", &fantasy.ProviderError{Message: "slow down", StatusCode: 429}, true, ai.ErrProviderUnavailable},
		{"request timeout", &fantasy.ProviderError{Message: "timeout", StatusCode: 408}, true, ai.ErrProviderUnavailable},
		{"bad request", &fantasy.ProviderError{Message: "invalid schema", StatusCode: 400}, false, ai.ErrProviderUnavailable},
		{"unauthorized", &fantasy.ProviderError{Message: "bad key", StatusCode: 401}, false, ai.ErrProviderUnavailable},
		{"canceled without status", &fantasy.ProviderError{Message: "request failed", Cause: context.Canceled}, false, ai.ErrCanceled},
		{"retries wrapping server error", &fantasy.RetryError{Errors: []error{&fantasy.ProviderError{StatusCode: 500}}}, true, ai.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("openai", fakeProvider{model: failingObject(tt.err)}, "gpt-4o-mini")
			_, err := p.Generate(context.Background(), categorizeRequest())

			var te *ai.TransportError
			assert.Equal(t, tt.transient, errors.As(err, &te), "transient: %v", err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

// --- through the invoker ---

type categorizeIn struct {
	Description string `json:"description" validate:"required"`
}

type categorizeOut struct {
	Category string `json:"category"`
}

func invokerOver(t *testing.T, p *Provider) *ai.Invoker {
	t.Helper()
	reg, err := schema.NewRegistry(schema.MustDefine[categorizeIn, categorizeOut]("categorizeJob",
		schema.WithPrompt(&prompt.Definition{
			Name:     "categorizeJob",
			Template: prompt.MustParse("categorizeJob", "Beskrivning: {{description}}"),
		}),
	))
	require.NoError(t, err)
	return ai.NewInvoker(p, reg, nil, ai.Options{Timeout: time.Second, MaxRetries: 2, RetryInterval: time.Millisecond})
}

func TestInvoke_PermanentHostedFailuresAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{
			name: "unparsable object",
			err:  &fantasy.NoObjectGeneratedError{RawText: "Jag vet inte", ParseError: errors.New("invalid character 'J'")},
			is: func(err error) bool {
				var om *schema.OutputMismatchError
				return errors.As(err, &om)
			},
		},
		{
			name: "unauthorized",
			err:  &fantasy.ProviderError{Message: "bad key", StatusCode: 401},
			is:   func(err error) bool { return errors.Is(err, ai.ErrProviderUnavailable) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := failingObject(tt.err)
			iv := invokerOver(t, New("gemini", fakeProvider{model: model}, "gemini-2.0-flash"))

			_, err := iv.Invoke(context.Background(), ai.InvocationRequest{
				Flow:  "categorizeJob",
				Input: categorizeIn{Description: "punktering"},
			})
			require.Error(t, err)
			assert.True(t, tt.is(err), "unexpected error: %v", err)
			assert.Equal(t, int32(1), model.objectCalls.Load())
		})
	}
}

func TestInvoke_HostedServerErrorIsRetried(t *testing.T) {
	model := failingObject(&fantasy.ProviderError{Message: "overloaded", StatusCode: 503})
	iv := invokerOver(t, New("gemini", fakeProvider{model: model}, "gemini-2.0-flash"))

	_, err := iv.Invoke(context.Background(), ai.InvocationRequest{
		Flow:  "categorizeJob",
		Input: categorizeIn{Description: "punktering"},
	})
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Equal(t, int32(3), model.objectCalls.Load())
}
