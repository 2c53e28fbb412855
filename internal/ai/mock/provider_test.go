package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/ai/mock"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest(flow string) models.GenerateRequest {
	return models.GenerateRequest{
		Flow:  flow,
		Parts: []models.Part{{Text: "Beskrivning: punktering"}},
	}
}

// --- NewMockProvider ---

func TestNewMockProvider_Name(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
}

func TestNewMockProvider_CannedResponses(t *testing.T) {
	p := mock.NewMockProvider()

	for flow, want := range mock.DefaultResponses() {
		t.Run(flow, func(t *testing.T) {
			resp, err := p.Generate(context.Background(), sampleRequest(flow))
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(resp.Output))
			assert.Equal(t, "mock-v1", resp.Model)
			assert.True(t, json.Valid(resp.Output))
		})
	}
}

func TestNewMockProvider_UnknownFlow(t *testing.T) {
	p := mock.NewMockProvider()
	_, err := p.Generate(context.Background(), sampleRequest("planTrip"))
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
}

func TestNewMockProvider_CallsOfferedTools(t *testing.T) {
	p := mock.NewMockProvider()

	var gotInput json.RawMessage
	req := sampleRequest("generateInsuranceReport")
	req.Tools = []models.Tool{{
		Name: "getVehicleInfoByLicensePlate",
		Handler: func(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
			gotInput = input
			return json.RawMessage(`{"found":true}`), nil
		},
	}}

	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ToolCalls)
	assert.JSONEq(t, `{"licensePlate":"REG 123"}`, string(gotInput))
}

func TestNewMockProvider_ToolErrorAborts(t *testing.T) {
	p := mock.NewMockProvider()

	req := sampleRequest("generateInsuranceReport")
	req.Tools = []models.Tool{{
		Name: "getVehicleInfoByLicensePlate",
		Handler: func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
			return nil, errors.New("registry offline")
		},
	}}

	_, err := p.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getVehicleInfoByLicensePlate")
}

func TestDefaultResponses_ReturnsCopy(t *testing.T) {
	a := mock.DefaultResponses()
	delete(a, "identifyVehicle")

	b := mock.DefaultResponses()
	assert.Contains(t, b, "identifyVehicle")
}

// --- NewFailingProvider ---

func TestNewFailingProvider_Name(t *testing.T) {
	p := mock.NewFailingProvider(ai.ErrProviderUnavailable)
	assert.Equal(t, "mock-failing", p.Name())
}

func TestNewFailingProvider_Generate(t *testing.T) {
	p := mock.NewFailingProvider(ai.ErrProviderUnavailable)
	_, err := p.Generate(context.Background(), sampleRequest("categorizeJob"))

	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}

func TestNewFailingProvider_CustomError(t *testing.T) {
	customErr := errors.New("custom AI error")
	p := mock.NewFailingProvider(customErr)

	_, err := p.Generate(context.Background(), sampleRequest("categorizeJob"))
	assert.ErrorIs(t, err, customErr)
}

// --- NewTimeoutProvider ---

func TestNewTimeoutProvider_Name(t *testing.T) {
	p := mock.NewTimeoutProvider()
	assert.Equal(t, "mock-timeout", p.Name())
}

func TestNewTimeoutProvider_Generate(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, sampleRequest("categorizeJob"))
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
}

// --- NewStaticProvider ---

func TestNewStaticProvider(t *testing.T) {
	p := mock.NewStaticProvider(`{"make":"Audi","model":"A4"}`)
	resp, err := p.Generate(context.Background(), sampleRequest("anything"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"make":"Audi","model":"A4"}`, string(resp.Output))
}

// --- Sentinel errors ---

func TestSentinelErrors(t *testing.T) {
	assert.NotNil(t, ai.ErrProviderUnavailable)
	assert.NotNil(t, ai.ErrInferenceTimeout)
	assert.NotNil(t, ai.ErrInvalidResponse)

	// Ensure they are distinct
	assert.NotEqual(t, ai.ErrProviderUnavailable, ai.ErrInferenceTimeout)
	assert.NotEqual(t, ai.ErrInferenceTimeout, ai.ErrInvalidResponse)
}

// --- Zero-value MockProvider ---

func TestMockProvider_NoResponses(t *testing.T) {
	p := &mock.MockProvider{Name_: "bare"}

	_, err := p.Generate(context.Background(), sampleRequest("categorizeJob"))
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
}

// --- Interface compliance ---

func TestMockProvider_ImplementsModelProvider(t *testing.T) {
	var _ models.ModelProvider = mock.NewMockProvider()
	var _ models.ModelProvider = mock.NewFailingProvider(nil)
	var _ models.ModelProvider = mock.NewTimeoutProvider()
}
