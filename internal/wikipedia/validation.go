package wikipedia

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/olgasafonova/wikipedia-mcp-server/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json/yaml names, which are what callers see
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// ValidateArgs checks tool arguments before any provider call. The first
// failing field is reported as a ValidationError.
func ValidateArgs(args any) error {
	return firstViolation(validate.Struct(args))
}

// Validate checks the provider configuration
func (c Config) Validate() error {
	return firstViolation(validate.Struct(c))
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("", "", err.Error())
	}

	fe := verrs[0]
	return apperrors.NewValidationError(fe.Field(), fmt.Sprint(fe.Value()), violationMessage(fe))
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required and must not be blank"
	case "url":
		return "must be an absolute URL"
	case "hostname_rfc1123":
		return "must be a language code such as en or de"
	case "excludesall":
		return fmt.Sprintf("must not contain %q", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
