package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/kiranshivaraju/rescueassist/internal/cache"
	"github.com/kiranshivaraju/rescueassist/internal/prompt"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kiranshivaraju/rescueassist/internal/ai"

// InvocationRequest names a flow and carries its typed input value.
type InvocationRequest struct {
	Flow  string
	Input any
}

// Options tunes the invocation pipeline.
type Options struct {
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration
	// CacheTTL of zero disables result caching.
	CacheTTL time.Duration
}

// Invoker runs a flow end to end: input validation, prompt rendering, the model
// call and output validation.
type Invoker struct {
	provider models.ModelProvider
	registry *schema.Registry
	cache    cache.Cache
	opts     Options

	tracer      trace.Tracer
	invocations metric.Int64Counter
}

// NewInvoker creates a new Invoker. ca may be nil.
func NewInvoker(provider models.ModelProvider, registry *schema.Registry, ca cache.Cache, opts Options) *Invoker {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter("rescueassist.flow.invocations",
		metric.WithDescription("Flow invocations by flow and outcome"))
	if err != nil {
		slog.Warn("creating invocation counter", "error", err)
	}

	return &Invoker{
		provider:    provider,
		registry:    registry,
		cache:       ca,
		opts:        opts,
		tracer:      otel.Tracer(instrumentationName),
		invocations: counter,
	}
}

func (iv *Invoker) Registry() *schema.Registry { return iv.registry }

func (iv *Invoker) ProviderName() string { return iv.provider.Name() }

// Invoke returns the flow's validated output as raw JSON.
func (iv *Invoker) Invoke(ctx context.Context, req InvocationRequest) (json.RawMessage, error) {
	spec, err := iv.registry.Get(req.Flow)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := iv.tracer.Start(ctx, "flow "+spec.Name, trace.WithAttributes(
		attribute.String("flow", spec.Name),
		attribute.String("provider", iv.provider.Name()),
	))
	defer span.End()

	out, cached, err := iv.invoke(ctx, spec, req.Input)
	outcome := outcomeOf(err)
	if iv.invocations != nil {
		iv.invocations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("flow", spec.Name),
			attribute.String("outcome", outcome),
		))
	}
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		slog.Error("flow invocation failed",
			"flow", spec.Name,
			"provider", iv.provider.Name(),
			"outcome", outcome,
			"duration_ms", durationMs,
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("cached", cached))
	slog.Info("flow invoked",
		"flow", spec.Name,
		"provider", iv.provider.Name(),
		"cached", cached,
		"duration_ms", durationMs,
	)
	return out, nil
}

func (iv *Invoker) invoke(ctx context.Context, spec *schema.FlowSpec, input any) (json.RawMessage, bool, error) {
	if err := spec.ValidateInput(input); err != nil {
		return nil, false, err
	}
	if spec.Prompt == nil {
		return nil, false, fmt.Errorf("%s: flow has no prompt", spec.Name)
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, false, &schema.ValidationError{Flow: spec.Name, Rule: "json", Err: err}
	}

	var key string
	if spec.Cacheable && iv.cache != nil && iv.opts.CacheTTL > 0 {
		key = cache.FlowResultKey(spec.Name, inputJSON)
		if b, found, err := iv.cache.Get(ctx, key); err != nil {
			slog.Warn("flow cache read failed", "flow", spec.Name, "error", err)
		} else if found && spec.ValidateOutput(b) == nil {
			return b, true, nil
		}
	}

	rendered, err := spec.Prompt.Render(json.RawMessage(inputJSON))
	if err != nil {
		var fe *prompt.FieldError
		if errors.As(err, &fe) {
			return nil, false, &schema.ValidationError{Flow: spec.Name, Field: fe.Path, Rule: "render", Err: fe.Err}
		}
		return nil, false, fmt.Errorf("%s: rendering prompt: %w", spec.Name, err)
	}

	resp, err := iv.generate(ctx, spec, models.GenerateRequest{
		Flow:              spec.Name,
		Parts:             rendered.Parts,
		OutputSchema:      spec.OutputSchema,
		SchemaName:        spec.Name + "Output",
		SchemaDescription: spec.Description,
		Temperature:       spec.Temperature,
		Tools:             spec.Tools,
	})
	if err != nil {
		return nil, false, err
	}

	if err := spec.ValidateOutput(resp.Output); err != nil {
		slog.Warn("model output rejected",
			"flow", spec.Name,
			"model", resp.Model,
			"raw", truncateString(string(resp.Output), 2000),
		)
		return nil, false, err
	}

	if key != "" {
		if err := iv.cache.Set(ctx, key, resp.Output, iv.opts.CacheTTL); err != nil {
			slog.Warn("flow cache write failed", "flow", spec.Name, "error", err)
		}
	}
	return resp.Output, false, nil
}

// generate calls the provider under the inference deadline, retrying transport
// failures with exponential backoff.
func (iv *Invoker) generate(ctx context.Context, spec *schema.FlowSpec, req models.GenerateRequest) (models.GenerateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, iv.opts.Timeout)
	defer cancel()

	var resp models.GenerateResponse
	attempt := 0
	op := func() error {
		attempt++
		r, err := iv.provider.Generate(ctx, req)
		if err == nil {
			resp = r
			return nil
		}

		err = Classify(iv.provider.Name(), err)
		var te *TransportError
		if !errors.As(err, &te) {
			return backoff.Permanent(err)
		}
		slog.Warn("model call failed",
			"flow", spec.Name,
			"provider", iv.provider.Name(),
			"attempt", attempt,
			"error", err,
		)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = iv.opts.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(iv.opts.MaxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return resp, fmt.Errorf("%w: %s after %d attempt(s)", ErrCanceled, spec.Name, attempt)
		case ctx.Err() != nil && !errors.Is(err, ErrInferenceTimeout):
			return resp, fmt.Errorf("%w: %s after %d attempt(s): %v", ErrInferenceTimeout, spec.Name, attempt, ctx.Err())
		}
		return resp, err
	}
	return resp, nil
}

func outcomeOf(err error) string {
	var ve *schema.ValidationError
	var om *schema.OutputMismatchError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid_input"
	case errors.As(err, &om):
		return "output_mismatch"
	case errors.Is(err, ErrInferenceTimeout):
		return "timeout"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
