package errors

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationError collects validation failures per field
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// Error implements the error interface. Fields are listed alphabetically.
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(v.Fields[field], ", ")))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// hasErrors returns true if there are any validation errors
func (v *ValidationError) hasErrors() bool {
	return len(v.Fields) > 0
}

// toError converts the validation error to an INVALID_ARGUMENT *Error
func (v *ValidationError) toError() *Error {
	if !v.hasErrors() {
		return nil
	}
	return InvalidArgument(v.Error()).WithMeta("validation_errors", v.Fields)
}

// ValidationBuilder accumulates field errors. Build returns nil when
// nothing was recorded.
type ValidationBuilder struct {
	err *ValidationError
}

// NewValidationBuilder creates a new validation builder
func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{
		err: &ValidationError{Fields: make(map[string][]string)},
	}
}

// Field adds a validation error for a field
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.err.Fields[field] = append(vb.err.Fields[field], message)
	return vb
}

// fieldf adds a formatted validation error for a field
func (vb *ValidationBuilder) fieldf(field, format string, args ...any) *ValidationBuilder {
	return vb.Field(field, fmt.Sprintf(format, args...))
}

// RequiredField adds a required field error
func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// InvalidField adds an invalid field error
func (vb *ValidationBuilder) InvalidField(field, reason string) *ValidationBuilder {
	return vb.fieldf(field, "is invalid: %s", reason)
}

// Build returns the error if there are validation errors, nil otherwise
func (vb *ValidationBuilder) Build() error {
	if vb.err.hasErrors() {
		return vb.err.toError()
	}
	return nil
}

// ValidateRange checks if a value is within a range
func ValidateRange(field string, value, minValue, maxValue int, vb *ValidationBuilder) {
	if value < minValue || value > maxValue {
		vb.fieldf(field, "must be between %d and %d", minValue, maxValue)
	}
}

// ValidateHTTPURL checks that value is an absolute http(s) URL
func ValidateHTTPURL(field, value string, vb *ValidationBuilder) {
	u, err := url.Parse(value)
	if err != nil {
		vb.InvalidField(field, err.Error())
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		vb.InvalidField(field, "scheme must be http or https")
		return
	}
	if u.Host == "" {
		vb.InvalidField(field, "host is required")
	}
}
