package ai

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/kiranshivaraju/rescueassist/internal/schema"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrCanceled            = errors.New("ai invocation canceled")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
	ErrMediaWithTools      = errors.New("media attachments cannot be combined with tools")
	ErrUnsupportedMedia    = errors.New("media type not supported by provider")
)

// TransportError wraps a failure to reach the model or receive its reply.
// Only transport errors are retried.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Classify maps an unclassified provider failure to ErrInferenceTimeout,
// ErrCanceled or a TransportError wrapping ErrProviderUnavailable. Errors that
// already carry one of the package sentinels or a schema error are returned unchanged.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var (
		te *TransportError
		om *schema.OutputMismatchError
		ve *schema.ValidationError
	)
	if errors.As(err, &te) || errors.As(err, &om) || errors.As(err, &ve) {
		return err
	}
	for _, known := range []error{ErrInferenceTimeout, ErrCanceled, ErrProviderUnavailable, ErrInvalidResponse, ErrMediaWithTools, ErrUnsupportedMedia} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}
	return &TransportError{Provider: provider, Err: fmt.Errorf("%w: %v", ErrProviderUnavailable, err)}
}
