package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"imhub/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages match request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidateSlug(fl.Field().String()) == nil
	}); err != nil {
		panic(fmt.Sprintf("register slug validation: %v", err))
	}

	return v
}

// Struct validates a record against its validate tags and returns a
// VALIDATION_ERROR AppError naming each failing field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return models.NewValidationError("Invalid input")
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldMessage(fe))
	}
	sort.Strings(msgs)
	return models.NewValidationError(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "slug":
		return field + " can only contain letters, numbers, underscores, and hyphens"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
