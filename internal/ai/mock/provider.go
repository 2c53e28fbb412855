package mock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// MockProvider satisfies models.ModelProvider for tests and offline development.
type MockProvider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error)
	// Responses maps a flow name to the JSON returned when GenerateFunc is nil.
	Responses map[string]json.RawMessage
	// ToolInputs maps a tool name to the arguments the mock calls it with
	// before answering, when the request offers that tool.
	ToolInputs map[string]json.RawMessage
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	calls := 0
	for _, tool := range req.Tools {
		input, ok := m.ToolInputs[tool.Name]
		if !ok {
			continue
		}
		if _, err := tool.Handler(ctx, input); err != nil {
			return models.GenerateResponse{}, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		calls++
	}

	out, ok := m.Responses[req.Flow]
	if !ok {
		return models.GenerateResponse{}, fmt.Errorf("%w: no canned response for flow %q", ai.ErrInvalidResponse, req.Flow)
	}
	return models.GenerateResponse{Output: out, Model: "mock-v1", ToolCalls: calls}, nil
}

// NewMockProvider returns a MockProvider answering every flow with a fixed,
// schema-valid response based on the demo data.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_:     "mock",
		Responses: DefaultResponses(),
		ToolInputs: map[string]json.RawMessage{
			"getVehicleInfoByLicensePlate": json.RawMessage(`{"licensePlate":"REG 123"}`),
		},
	}
}

// DefaultResponses returns a fresh copy of the canned responses.
func DefaultResponses() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"optimizeRoute": json.RawMessage(`{"optimizedRoute":"Kör E4 norrut mot brytpunkten och därefter E20 till destinationen.","estimatedTime":"45 minuter","estimatedDistance":"38,5 km"}`),
		"generateReceiptMessage": json.RawMessage(`{"message":"Hej! Ditt fordon har nu lämnats på verkstaden. Tack för att du valde RescueAssist."}`),
		"generateInsuranceReport": json.RawMessage(`{"report":"## Skadeanmälan Bärgning\n\nFordonet bärgades till verkstad.\n\nMed vänlig hälsning,\nRescueAssist AB"}`),
		"generateDashboardReport": json.RawMessage(`{"report":"## Veckosummering\n\nVeckan präglades av jämn belastning."}`),
		"identifyVehicle":         json.RawMessage(`{"make":"Volvo","model":"XC60"}`),
		"transcribeAudio":         json.RawMessage(`{"transcription":"Bilen har fått motorstopp på E4:an vid Södertälje."}`),
		"suggestDriver":           json.RawMessage(`{"driverId":"user-2","reason":"Erik kör en Scania och är närmast platsen."}`),
		"categorizeJob":           json.RawMessage(`{"category":"Mekaniskt fel","priority":"Normal","suggestedAction":"Bärgning"}`),
		"extractSearchFilters":    json.RawMessage(`{}`),
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (models.GenerateResponse, error) {
			return models.GenerateResponse{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ models.GenerateRequest) (models.GenerateResponse, error) {
			<-ctx.Done()
			return models.GenerateResponse{}, ai.ErrInferenceTimeout
		},
	}
}

// NewStaticProvider returns a MockProvider that answers every request with output.
func NewStaticProvider(output string) *MockProvider {
	return &MockProvider{
		Name_: "mock-static",
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (models.GenerateResponse, error) {
			return models.GenerateResponse{Output: json.RawMessage(output), Model: "mock-v1"}, nil
		},
	}
}

// Compile-time check that MockProvider implements ModelProvider.
var _ models.ModelProvider = (*MockProvider)(nil)
