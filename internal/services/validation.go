package services

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	return v
}

// validateInput reports the first failing field as a 400 with a readable message.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrBadRequest("Invalid input")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return ErrBadRequest(fe.Field() + " is required")
	case "max":
		return ErrBadRequest(fe.Field() + " is too long")
	case "http_url":
		return ErrBadRequest(fe.Field() + " must be an http(s) URL")
	case "gte":
		return ErrBadRequest(fe.Field() + " must be at least " + fe.Param())
	case "lte":
		return ErrBadRequest(fe.Field() + " must be at most " + fe.Param())
	case "datetime":
		return ErrBadRequest(fe.Field() + " must match " + fe.Param())
	default:
		return ErrBadRequest(fe.Field() + " is invalid")
	}
}
