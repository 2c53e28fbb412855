// Package schema declares the input and output contract of every flow.
//
// Each flow is described once, by a pair of Go types. From them the registry derives
// the JSON Schema sent to the model, a runtime validator for caller input and a
// compiled validator for model output.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	invopop "github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonschema"
	"github.com/kiranshivaraju/rescueassist/internal/prompt"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// FlowSpec is the immutable contract of a single flow.
type FlowSpec struct {
	Name        string
	Description string
	// Prompt is nil for flows that only compose other flows.
	Prompt      *prompt.Template
	Temperature *float64
	Tools       []models.Tool
	// Cacheable flows may have their validated output reused for identical input.
	Cacheable bool
	// Example is a valid input used by documentation and self-checks.
	Example any

	InputSchema  json.RawMessage
	OutputSchema json.RawMessage

	inputType reflect.Type
	output    *jsonschema.Schema
}

// Option configures a FlowSpec at definition time.
type Option func(*FlowSpec)

func WithPrompt(def *prompt.Definition) Option {
	return func(s *FlowSpec) {
		s.Prompt = def.Template
		s.Temperature = def.Config.Temperature
		if s.Description == "" {
			s.Description = def.Description
		}
	}
}

func WithDescription(desc string) Option {
	return func(s *FlowSpec) { s.Description = desc }
}

func WithTools(tools ...models.Tool) Option {
	return func(s *FlowSpec) { s.Tools = append(s.Tools, tools...) }
}

func WithCache() Option {
	return func(s *FlowSpec) { s.Cacheable = true }
}

func WithExample(in any) Option {
	return func(s *FlowSpec) { s.Example = in }
}

var reflector = &invopop.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// Define builds the FlowSpec for a flow taking In and returning Out.
func Define[In, Out any](name string, opts ...Option) (*FlowSpec, error) {
	s := &FlowSpec{
		Name:      name,
		inputType: reflect.TypeFor[In](),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.InputSchema, err = reflectSchema(new(In)); err != nil {
		return nil, fmt.Errorf("flow %s: input schema: %w", name, err)
	}
	if s.OutputSchema, err = reflectSchema(new(Out)); err != nil {
		return nil, fmt.Errorf("flow %s: output schema: %w", name, err)
	}

	s.output, err = jsonschema.NewCompiler().Compile(s.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("flow %s: compile output schema: %w", name, err)
	}

	if s.Example != nil {
		if err := s.ValidateInput(s.Example); err != nil {
			return nil, fmt.Errorf("flow %s: example input: %w", name, err)
		}
	}
	return s, nil
}

// MustDefine is like Define but panics on error.
func MustDefine[In, Out any](name string, opts ...Option) *FlowSpec {
	s, err := Define[In, Out](name, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func reflectSchema(v any) (json.RawMessage, error) {
	return json.Marshal(reflector.Reflect(v))
}

// ValidateInput checks a typed input value against the flow's input contract.
func (s *FlowSpec) ValidateInput(in any) error {
	v := reflect.ValueOf(in)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return &ValidationError{Flow: s.Name, Rule: "required", Err: errors.New("input is nil")}
		}
		v = v.Elem()
	}
	if v.Type() != s.inputType {
		return &ValidationError{Flow: s.Name, Rule: "type",
			Err: fmt.Errorf("expected %s, got %s", s.inputType, v.Type())}
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	return ValidateStruct(s.Name, v.Interface())
}

// DecodeInput parses raw JSON into the flow's input type and validates it.
// The returned value is a pointer to the input struct.
func (s *FlowSpec) DecodeInput(raw json.RawMessage) (any, error) {
	ptr := reflect.New(s.inputType)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ptr.Interface()); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Flow: s.Name, Field: typeErr.Field, Rule: "type", Err: err}
		}
		return nil, &ValidationError{Flow: s.Name, Rule: "json", Err: err}
	}
	if err := s.ValidateInput(ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

// ValidateOutput checks raw model output against the compiled output schema.
func (s *FlowSpec) ValidateOutput(raw json.RawMessage) error {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return &OutputMismatchError{Flow: s.Name, Details: []string{err.Error()}, Raw: string(raw)}
	}

	result := s.output.Validate(data)
	if result.IsValid() {
		return nil
	}
	var details []string
	for _, detail := range result.Errors {
		details = append(details, detail.Message)
	}
	sort.Strings(details)
	return &OutputMismatchError{Flow: s.Name, Details: details, Raw: string(raw)}
}

// DecodeOutput validates raw model output and decodes it into Out.
func DecodeOutput[Out any](s *FlowSpec, raw json.RawMessage) (Out, error) {
	var out Out
	if err := s.ValidateOutput(raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &OutputMismatchError{Flow: s.Name, Details: []string{err.Error()}, Raw: string(raw)}
	}
	return out, nil
}

// Registry is the set of flows known to the process. It is read-only once built.
type Registry struct {
	specs map[string]*FlowSpec
}

// NewRegistry indexes specs by name. Duplicate names are rejected.
func NewRegistry(specs ...*FlowSpec) (*Registry, error) {
	r := &Registry{specs: make(map[string]*FlowSpec, len(specs))}
	for _, s := range specs {
		if _, dup := r.specs[s.Name]; dup {
			return nil, fmt.Errorf("duplicate flow %q", s.Name)
		}
		r.specs[s.Name] = s
	}
	return r, nil
}

// Get returns the spec for name.
func (r *Registry) Get(name string) (*FlowSpec, error) {
	s, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFlow, name)
	}
	return s, nil
}

// List returns all specs sorted by name.
func (r *Registry) List() []*FlowSpec {
	out := make([]*FlowSpec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
