package address

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	postalCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 \-]{1,10}[A-Z0-9]$`)
	phonePattern      = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
)

// BasicValidator performs format validation without external API calls.
type BasicValidator struct {
	validate *validator.Validate
}

// NewBasicValidator creates a new basic address validator.
func NewBasicValidator() *BasicValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their stored JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("postal_code", func(fl validator.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &BasicValidator{validate: v}
}

// Validate normalizes the address and checks required fields and formats.
func (v *BasicValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	normalized := addr.Normalize()
	result := &ValidationResult{NormalizedAddress: &normalized}

	err := v.validate.StructCtx(ctx, normalized)
	if err == nil {
		result.IsValid = true
		return result, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to validate address: %w", err)
	}

	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return result, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "postal_code":
		return "is not a valid postal code"
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	case "phone":
		return "is not a valid phone number"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
