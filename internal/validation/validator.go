// Package validation checks request payloads with validator/v10 and reports
// failures as domain validation errors keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/sensifinder/sensifinder-server/internal/errors"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the sensitivity-specific tags registered:
//
//	game         a supported game name
//	sensitivity  an integer within the slider range
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("game", func(fl validator.FieldLevel) bool {
		return sensitivity.Game(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("sensitivity", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= sensitivity.MinValue && n <= sensitivity.MaxValue
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// fieldPath drops the root struct name: "Request.camera_sensitivity.2x" becomes
// "camera_sensitivity.2x".
func fieldPath(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "game":
		return fmt.Sprintf("must be one of: %s", gameList())
	case "sensitivity":
		return fmt.Sprintf("must be between %d and %d", sensitivity.MinValue, sensitivity.MaxValue)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "alphanum":
		return "must contain only letters and digits"
	case "printascii":
		return "must contain only printable ASCII characters"
	default:
		return "is invalid"
	}
}

func gameList() string {
	games := sensitivity.Games()
	names := make([]string, len(games))
	for i, g := range games {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}
