package model

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate holds the shared validator instance. go-playground/validator caches
// struct metadata, so a single instance is reused for all checks.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Present decimal amounts as numbers so numeric tags like gte apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// ValidationError reports a rejected candidate record before any write happens.
type ValidationError struct {
	Index int    // position of the offending item in the request batch
	Field string // struct field that failed
	Rule  string // validator tag that failed, e.g. "email", "gte"
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %d: field %s violates rule %q", e.Index, e.Field, e.Rule)
}

// ValidateBatch checks every draft in a batch against its validate tags.
// The first violation is returned with the item's position; a batch with any
// invalid item is rejected as a whole, mirroring the all-or-nothing write path.
func ValidateBatch[T any](drafts []T) error {
	for i, d := range drafts {
		if err := validate.Struct(d); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				return &ValidationError{
					Index: i,
					Field: fieldErrs[0].Field(),
					Rule:  fieldErrs[0].Tag(),
				}
			}
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
