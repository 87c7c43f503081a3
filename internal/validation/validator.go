// Package validation wraps a shared go-playground/validator instance with the
// custom tags used by product, pre-order and CMS input, and turns field
// errors into readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	whatsAppPattern = regexp.MustCompile(`^[0-9\-\+\s]+$`)
)

// ValidationError is a single failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// RequestValidationError collects the failed fields of one request.
type RequestValidationError struct {
	errors []ValidationError
}

// New builds a RequestValidationError for a single hand-checked field.
func New(field, message string) *RequestValidationError {
	return &RequestValidationError{errors: []ValidationError{{Field: field, Tag: "custom", Message: message}}}
}

// Errors returns the failed fields in declaration order.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error returns the first failing message; callers show one problem at a time.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	return ve.errors[0].Message
}

// GetValidator returns the singleton validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "whatsapp", validWhatsApp)
		mustRegister(v, "httpurl", validHTTPURL)
		mustRegister(v, "future", validFuture)
		mustRegister(v, "fieldtype", validFieldType)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// ValidateStruct validates s and returns nil or a *RequestValidationError.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []ValidationError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}
	out := make([]ValidationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Message: translateError(fe)}
	}
	return &RequestValidationError{errors: out}
}

// ValidWhatsApp reports whether s looks like a WhatsApp phone number.
func ValidWhatsApp(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && whatsAppPattern.MatchString(s) && len(s) >= 7 && len(s) <= 20
}

// ValidHTTPURL reports whether s is an http:// or https:// URL.
func ValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	return (strings.HasPrefix(s, "http://") && len(s) > len("http://")) ||
		(strings.HasPrefix(s, "https://") && len(s) > len("https://"))
}

func validWhatsApp(fl validator.FieldLevel) bool {
	return ValidWhatsApp(fl.Field().String())
}

func validHTTPURL(fl validator.FieldLevel) bool {
	return ValidHTTPURL(fl.Field().String())
}

func validFuture(fl validator.FieldLevel) bool {
	field := fl.Field()
	if t, ok := field.Interface().(time.Time); ok {
		return t.After(time.Now())
	}
	return false
}

func validFieldType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "text", "number", "textarea", "radio":
		return true
	}
	return false
}

var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"email":     "%s must be a valid email address",
	"whatsapp":  "%s must be 7-20 characters of digits, spaces, + or -",
	"httpurl":   "%s must start with http:// or https://",
	"future":    "%s must be in the future",
	"fieldtype": "%s must be one of text, number, textarea, radio",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	kind := fe.Kind()
	switch tag {
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("%s must contain at least %s items", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("%s must contain at most %s items", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
