package schema

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// validate is shared by all flows. validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	enums := map[string]func(string) bool{
		"jobstatus":   models.ValidJobStatus,
		"vehicletype": models.ValidVehicleType,
		"priority":    models.ValidPriority,
		"role":        models.ValidRole,
	}
	for tag, valid := range enums {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
	return v
}

// fieldPath strips the root struct name from a validator namespace,
// e.g. "SuggestDriverInput.job.vehicleType" becomes "job.vehicleType".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// ValidateStruct checks v against its validate tags and reports the first
// failing field as a ValidationError attributed to context.
func ValidateStruct(context string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Flow: context, Field: fieldPath(fe.Namespace()), Rule: fe.Tag()}
	}
	return &ValidationError{Flow: context, Err: err}
}
