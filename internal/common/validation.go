package common

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationRule checks one field value; nil means valid.
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Validator collects field errors so a request reports every problem at once.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value in order and records every failure.
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ValidateAndReturnError turns collected failures into one error matching
// both ErrInvalidInput and ErrValidation; nil when the request is valid.
func ValidateAndReturnError(validator *Validator) error {
	if !validator.HasErrors() {
		return nil
	}
	messages := make([]string, 0, len(validator.errors))
	for _, err := range validator.errors {
		messages = append(messages, err.Error())
	}
	return NewAppError("VALIDATION_FAILED", strings.Join(messages, "; "), errors.Join(ErrInvalidInput, ErrValidation))
}

// Required rejects nil values and blank strings.
func Required(fieldName string, value interface{}) *ValidationError {
	missing := value == nil
	switch v := value.(type) {
	case string:
		missing = strings.TrimSpace(v) == ""
	case *string:
		missing = v == nil || strings.TrimSpace(*v) == ""
	}
	if missing {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	return nil
}

// MaxLength builds a rule capping a string or *string at max runes. Absent
// values pass.
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		var str string
		switch v := value.(type) {
		case string:
			str = v
		case *string:
			if v == nil {
				return nil
			}
			str = *v
		default:
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// OneOf builds a rule accepting only the listed string values.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
		}
		for _, a := range allowed {
			if str == a {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("must be one of [%s]", strings.Join(allowed, ", ")),
		}
	}
}

// MaxBytes builds a rule rejecting sizes above limit. Zero is rejected too.
func MaxBytes(limit int64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		size, ok := value.(int64)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be an int64"}
		}
		if size <= 0 {
			return &ValidationError{Field: fieldName, Value: value, Message: "must not be empty"}
		}
		if size > limit {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at most %d bytes", limit),
			}
		}
		return nil
	}
}
