package schema

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFlow = errors.New("unknown flow")

// ValidationError is returned when caller-supplied input does not satisfy a
// flow's input schema. It is raised before any model call is made.
type ValidationError struct {
	Flow  string
	Field string
	Rule  string
	Err   error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid input", e.Flow)
	if e.Field != "" {
		msg += fmt.Sprintf(": field %s", e.Field)
	}
	if e.Rule != "" {
		msg += fmt.Sprintf(" failed %q", e.Rule)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// OutputMismatchError is returned when the model's answer cannot be parsed into
// the flow's output schema. It signals a model or prompt defect, not a transient failure.
type OutputMismatchError struct {
	Flow    string
	Details []string
	Raw     string
}

func (e *OutputMismatchError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: model output does not match schema", e.Flow)
	}
	return fmt.Sprintf("%s: model output does not match schema: %s", e.Flow, strings.Join(e.Details, "; "))
}
