package schema

import (
	"encoding/json"
	"testing"

	"github.com/kiranshivaraju/rescueassist/internal/prompt"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJob struct {
	Location    string             `json:"location" validate:"required"`
	VehicleType models.VehicleType `json:"vehicleType" validate:"required,vehicletype" jsonschema:"enum=Car,enum=Motorcycle,enum=Truck,enum=Van"`
}

type testDriver struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type testInput struct {
	Job     testJob      `json:"job"`
	Drivers []testDriver `json:"drivers" validate:"required,min=1,dive"`
	Note    string       `json:"note,omitempty"`
}

type testOutput struct {
	DriverID string          `json:"driverId"`
	Reason   string          `json:"reason"`
	Priority models.Priority `json:"priority,omitempty" jsonschema:"enum=Hög,enum=Normal,enum=Låg"`
}

func validInput() testInput {
	return testInput{
		Job:     testJob{Location: "E4, Stockholm", VehicleType: models.VehicleTruck},
		Drivers: []testDriver{{ID: "d1", Name: "Erik"}},
	}
}

func testSpec(t *testing.T, opts ...Option) *FlowSpec {
	t.Helper()
	s, err := Define[testInput, testOutput]("suggestDriver", opts...)
	require.NoError(t, err)
	return s
}

func TestDefine_ReflectsSchemas(t *testing.T) {
	s := testSpec(t)

	var in map[string]any
	require.NoError(t, json.Unmarshal(s.InputSchema, &in))
	assert.Equal(t, "object", in["type"])
	props := in["properties"].(map[string]any)
	assert.Contains(t, props, "job")
	assert.Contains(t, props, "drivers")
	assert.ElementsMatch(t, []any{"job", "drivers"}, in["required"])

	var out map[string]any
	require.NoError(t, json.Unmarshal(s.OutputSchema, &out))
	outProps := out["properties"].(map[string]any)
	prio := outProps["priority"].(map[string]any)
	assert.Equal(t, []any{"Hög", "Normal", "Låg"}, prio["enum"])
	assert.ElementsMatch(t, []any{"driverId", "reason"}, out["required"])
}

func TestDefine_WithPrompt(t *testing.T) {
	def, err := prompt.ParseDefinition("suggestDriver", []byte("---\ndescription: Föreslår förare.\nconfig:\n  temperature: 0.1\n---\nPlats: {{job.location}}"))
	require.NoError(t, err)

	s := testSpec(t, WithPrompt(def), WithCache())
	assert.Equal(t, "Föreslår förare.", s.Description)
	require.NotNil(t, s.Prompt)
	require.NotNil(t, s.Temperature)
	assert.True(t, s.Cacheable)
}

func TestDefine_RejectsInvalidExample(t *testing.T) {
	_, err := Define[testInput, testOutput]("suggestDriver", WithExample(testInput{}))
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidateInput_Valid(t *testing.T) {
	s := testSpec(t)
	in := validInput()
	assert.NoError(t, s.ValidateInput(in))
	assert.NoError(t, s.ValidateInput(&in))
}

func TestValidateInput_NamesOffendingField(t *testing.T) {
	s := testSpec(t)

	tests := []struct {
		name      string
		mutate    func(*testInput)
		wantField string
		wantRule  string
	}{
		{"missing location", func(in *testInput) { in.Job.Location = "" }, "job.location", "required"},
		{"bad vehicle type", func(in *testInput) { in.Job.VehicleType = "Bus" }, "job.vehicleType", "vehicletype"},
		{"no drivers", func(in *testInput) { in.Drivers = nil }, "drivers", "required"},
		{"driver without id", func(in *testInput) { in.Drivers[0].ID = "" }, "drivers[0].id", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := s.ValidateInput(in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "suggestDriver", ve.Flow)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantRule, ve.Rule)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestValidateInput_WrongType(t *testing.T) {
	s := testSpec(t)
	err := s.ValidateInput(testOutput{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Rule)

	var nilIn *testInput
	require.ErrorAs(t, s.ValidateInput(nilIn), &ve)
	assert.Equal(t, "required", ve.Rule)
}

func TestDecodeInput(t *testing.T) {
	s := testSpec(t)

	v, err := s.DecodeInput(json.RawMessage(`{"job":{"location":"Arlanda","vehicleType":"Van"},"drivers":[{"id":"d2","name":"Anna"}]}`))
	require.NoError(t, err)
	in := v.(*testInput)
	assert.Equal(t, "Arlanda", in.Job.Location)
	assert.Equal(t, models.VehicleVan, in.Job.VehicleType)
}

func TestDecodeInput_Errors(t *testing.T) {
	s := testSpec(t)
	var ve *ValidationError

	_, err := s.DecodeInput(json.RawMessage(`{"job":{"location":1,"vehicleType":"Van"},"drivers":[]}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "job.location", ve.Field)
	assert.Equal(t, "type", ve.Rule)

	_, err = s.DecodeInput(json.RawMessage(`{"job":{},"drivers":[],"extra":true}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "json", ve.Rule)

	_, err = s.DecodeInput(json.RawMessage(`not json`))
	require.ErrorAs(t, err, &ve)

	_, err = s.DecodeInput(json.RawMessage(`{"job":{"location":"Uppsala","vehicleType":"Car"},"drivers":[]}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "drivers", ve.Field)
}

func TestValidateOutput(t *testing.T) {
	s := testSpec(t)

	assert.NoError(t, s.ValidateOutput(json.RawMessage(`{"driverId":"d1","reason":"Närmast, ca 15 min bort."}`)))
	assert.NoError(t, s.ValidateOutput(json.RawMessage(`{"driverId":"d1","reason":"ok","priority":"Hög"}`)))

	bad := map[string]string{
		"not json":         `{"driverId":`,
		"missing reason":   `{"driverId":"d1"}`,
		"wrong type":       `{"driverId":7,"reason":"x"}`,
		"unknown enum":     `{"driverId":"d1","reason":"x","priority":"High"}`,
		"extra property":   `{"driverId":"d1","reason":"x","eta":"15 min"}`,
		"array not object": `[]`,
	}
	for name, raw := range bad {
		t.Run(name, func(t *testing.T) {
			err := s.ValidateOutput(json.RawMessage(raw))
			var om *OutputMismatchError
			require.ErrorAs(t, err, &om)
			assert.Equal(t, "suggestDriver", om.Flow)
			assert.Equal(t, raw, om.Raw)
			assert.NotEmpty(t, om.Details)
		})
	}
}

func TestDecodeOutput(t *testing.T) {
	s := testSpec(t)

	out, err := DecodeOutput[testOutput](s, json.RawMessage(`{"driverId":"d1","reason":"Närmast"}`))
	require.NoError(t, err)
	assert.Equal(t, "d1", out.DriverID)

	_, err = DecodeOutput[testOutput](s, json.RawMessage(`{"reason":"Närmast"}`))
	var om *OutputMismatchError
	assert.ErrorAs(t, err, &om)
}

func TestRegistry(t *testing.T) {
	a := MustDefine[testInput, testOutput]("suggestDriver")
	b := MustDefine[testInput, testOutput]("categorizeJob")

	r, err := NewRegistry(a, b)
	require.NoError(t, err)

	got, err := r.Get("categorizeJob")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownFlow)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "categorizeJob", list[0].Name)
	assert.Equal(t, "suggestDriver", list[1].Name)

	_, err = NewRegistry(a, a)
	assert.Error(t, err)
}
