package common

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldError is one failed check on a named input.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Reason, e.Value)
}

// FieldErrors joins with "; " so a whole batch reads as one detail message.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// ValidationRule checks a single value; nil means it passed.
type ValidationRule func(field string, value any) *FieldError

// Validator accumulates failures across fields so every bad input is
// reported in one response.
type Validator struct {
	failed FieldErrors
}

func NewValidator() *Validator { return &Validator{} }

// Field runs every rule against value. Rules keep running after a failure.
func (v *Validator) Field(field string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if fe := rule(field, value); fe != nil {
			v.failed = append(v.failed, *fe)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.failed) > 0 }

func (v *Validator) Errors() FieldErrors { return v.failed }

// ValidateAndReturnError returns nil or one INVALID_INPUT AppError listing
// every collected failure.
func ValidateAndReturnError(v *Validator) error {
	if !v.HasErrors() {
		return nil
	}
	return InvalidInput(v.failed.Error())
}

func fail(field string, value any, reason string) *FieldError {
	return &FieldError{Field: field, Value: value, Reason: reason}
}

// Required rejects nil and blank strings.
func Required(field string, value any) *FieldError {
	switch s := value.(type) {
	case nil:
		return fail(field, value, "is required")
	case string:
		if strings.TrimSpace(s) == "" {
			return fail(field, value, "is required")
		}
	}
	return nil
}

// MaxLength caps strings at max runes; other types pass.
func MaxLength(max int) ValidationRule {
	return func(field string, value any) *FieldError {
		if s, ok := value.(string); ok && utf8.RuneCountInString(s) > max {
			return fail(field, value, fmt.Sprintf("must be at most %d characters", max))
		}
		return nil
	}
}

// NonNegative accepts only ints that are >= 0.
func NonNegative(field string, value any) *FieldError {
	n, ok := value.(int)
	if !ok {
		return fail(field, value, "must be an integer")
	}
	if n < 0 {
		return fail(field, value, "must be non-negative")
	}
	return nil
}

// Between accepts float64 values in [lo, hi].
func Between(lo, hi float64) ValidationRule {
	return func(field string, value any) *FieldError {
		f, ok := value.(float64)
		if !ok {
			return fail(field, value, "must be a number")
		}
		if math.IsNaN(f) || f < lo || f > hi {
			return fail(field, value, fmt.Sprintf("must be between %g and %g", lo, hi))
		}
		return nil
	}
}

// DateYMD requires a calendar date written as YYYY-MM-DD.
func DateYMD(field string, value any) *FieldError {
	s, ok := value.(string)
	if !ok {
		return fail(field, value, "must be a string")
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fail(field, value, "must be a date (YYYY-MM-DD)")
	}
	return nil
}
