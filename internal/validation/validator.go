// Package validation holds the field rules shared by request schemas and
// the go-playground validator that enforces them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"invoice-service/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared validator with the custom tags registered:
// hsn, uom, gstin, ifsc, accountno and name.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = newValidator()
	})
	return instance
}

func newValidator() *validator.Validate {
	v := validator.New()

	// error messages use the label tag, falling back to the json name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals validate as their float value so gt/gte work
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	rules := map[string]func(string) bool{
		"hsn":       IsHSN,
		"uom":       IsUOM,
		"gstin":     IsGSTIN,
		"ifsc":      IsIFSC,
		"accountno": IsAccountNumber,
		"name":      IsName,
	}
	for tag, rule := range rules {
		rule := rule
		// registration only fails for empty tags
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String())
		})
	}
	return v
}

// Struct validates s and returns the first failure as a validation error
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return apperror.Validation("%s", message(verrs[0]))
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("At least one %s is required.", label)
		}
		return fmt.Sprintf("%s is required.", label)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("At least one %s is required.", label)
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative.", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	}
	return fmt.Sprintf("%s must be in valid format.", label)
}

// EchoValidator adapts the shared validator to echo.Validator
type EchoValidator struct{}

// Validate implements echo.Validator
func (EchoValidator) Validate(i interface{}) error {
	return Struct(i)
}
