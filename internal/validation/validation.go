// Package validation converts go-playground/validator failures into
// field-level errors that survive the API boundary as structured data.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps input field names to human-readable messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Check runs struct validation and flattens the result into FieldErrors.
// Field names come from the struct's json tags via the validator's
// registered tag-name function (see New).
func Check(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validate: %w", err)
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}

	fields := FieldErrors{}
	for _, violation := range violations {
		fields[violation.Field()] = message(violation)
	}
	return fields
}

// New builds a validator that reports fields by their json tag names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func message(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be at least " + violation.Param()
	case "lte":
		return "must be at most " + violation.Param()
	case "min":
		return "must have at least " + violation.Param() + " characters"
	case "max":
		return "must have at most " + violation.Param() + " characters"
	case "eq":
		return "must equal " + violation.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// ValidateURL checks that a non-empty URL string is well-formed with an
// http or https scheme and a host. Empty strings pass; pair with the
// required tag when the field is mandatory.
func ValidateURL(urlString, fieldName string) error {
	if urlString == "" {
		return nil
	}
	parsed, err := url.Parse(urlString)
	if err != nil || parsed.Host == "" {
		return FieldErrors{fieldName: "must be a valid URL"}
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return FieldErrors{fieldName: "URL scheme must be http or https"}
	}
	return nil
}
