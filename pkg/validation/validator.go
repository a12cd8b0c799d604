// Package validation provides struct validation using go-playground/validator
package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yshengliao/turbohttp/core/types"
)

// Validator wraps go-playground/validator
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator instance with custom rules
func NewValidator() *Validator {
	v := validator.New()

	RegisterCustomValidators(v)

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct
func (v *Validator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		return NewValidationError(err)
	}
	return nil
}

// getValidationMessage returns a custom error message for validation errors
func getValidationMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "httpmethod":
		return fmt.Sprintf("%s must be a standard HTTP method", field)
	case "urlprefix":
		return fmt.Sprintf("%s must start with /", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

var standardMethods = map[string]struct{}{
	"GET": {}, "HEAD": {}, "POST": {}, "PUT": {}, "PATCH": {},
	"DELETE": {}, "OPTIONS": {}, "CONNECT": {}, "TRACE": {},
}

// RegisterCustomValidators registers all custom validation rules
func RegisterCustomValidators(v *validator.Validate) {
	// HTTP method validator, case-insensitive
	v.RegisterValidation("httpmethod", func(fl validator.FieldLevel) bool {
		_, ok := standardMethods[strings.ToUpper(fl.Field().String())]
		return ok
	})

	// URL prefix validator: empty or absolute path
	v.RegisterValidation("urlprefix", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return p == "" || strings.HasPrefix(p, "/")
	})
}

// ValidationError represents a validation error
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// NewValidationError creates a validation error from validator errors
func NewValidationError(err error) *ValidationError {
	ve := &ValidationError{
		Errors: make(map[string]string),
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := strings.ToLower(e.Field())
			ve.Errors[field] = getValidationMessage(field, e.Tag(), e.Param())
		}
	}

	return ve
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(ve.Errors))
	for field := range ve.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, ve.Errors[field]))
	}
	return strings.Join(msgs, "; ")
}

// DecodeAndValidate decodes the JSON request body into i and validates it
func DecodeAndValidate(req *types.Request, i any) error {
	body := req.Raw().Body
	if body == nil {
		return fmt.Errorf("invalid request format: empty body")
	}
	if err := json.NewDecoder(body).Decode(i); err != nil && err != io.EOF {
		return fmt.Errorf("invalid request format: %w", err)
	}

	return NewValidator().Validate(i)
}
