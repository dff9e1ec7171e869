package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError reports which fields violated which constraint.
// Fields maps the JSON field name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks candidate products against the catalog's field rules.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the decimal rules registered.
func NewValidator() *Validator {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are validated through their canonical string form so the
	// decimal_* rules below receive a plain string field.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return boundedString(d)
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "decimal_min", decimalMin)
	mustRegister(v, "decimal_scale", decimalScale)
	mustRegister(v, "decimal_whole", decimalWhole)

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// ValidateProduct checks every rule and returns a *ValidationError listing all violations.
func (v *Validator) ValidateProduct(in models.ProductInput) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate product: %w", err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = message(fe)
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "decimal_min":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "decimal_scale":
		return fmt.Sprintf("must have at most %s decimal places", fe.Param())
	case "decimal_whole":
		return fmt.Sprintf("must have at most %s digits before the decimal point", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

func decimalMin(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	lower, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(lower)
}

// decimalScale rejects values with significant digits beyond the given scale;
// trailing zeros are fine.
func decimalScale(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	var scale int
	if _, err := fmt.Sscan(fl.Param(), &scale); err != nil {
		return false
	}
	_, frac := digits(d)
	return frac <= scale
}

func decimalWhole(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	var limit int
	if _, err := fmt.Sscan(fl.Param(), &limit); err != nil {
		return false
	}
	whole, _ := digits(d)
	return whole <= limit
}

// maxPriceDigits caps the whole and fractional digits a price is expanded to
// before validation. It is far above any accepted price.
const maxPriceDigits = 32

// boundedString renders d for the decimal_* rules without expanding a large
// exponent. Values with more than maxPriceDigits whole or fractional digits are
// replaced by a short value of the same sign that fails the same rules.
func boundedString(d decimal.Decimal) string {
	whole, frac := digits(d)
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	switch {
	case whole > maxPriceDigits:
		return sign + "1" + strings.Repeat("0", maxPriceDigits)
	case frac > maxPriceDigits:
		return sign + "0." + strings.Repeat("0", maxPriceDigits) + "1"
	}
	return d.String()
}

// digits counts the whole digits and the significant fractional digits of d
// from its coefficient and exponent.
func digits(d decimal.Decimal) (whole, frac int) {
	coef := d.Coefficient()
	s := coef.Abs(coef).String()
	if s == "0" {
		return 0, 0
	}
	trimmed := strings.TrimRight(s, "0")
	exp := int(d.Exponent()) + len(s) - len(trimmed)

	whole = len(trimmed) + exp
	if whole < 0 {
		whole = 0
	}
	if exp < 0 {
		frac = -exp
	}
	return whole, frac
}
