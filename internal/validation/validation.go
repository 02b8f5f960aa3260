// Package validation checks request payloads against their field rules and
// reports every violation at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one violated rule.
type FieldError struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	RejectedValue any    `json:"rejected_value,omitempty"`
}

// Error carries every violated rule of a payload.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewError builds an Error for a single field.  Services use it for rules
// that need the store, such as medication ownership.
func NewError(field, message string, value any) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message, RejectedValue: value}}}
}

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	clockRe    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Validator wraps a configured go-playground validator.  It satisfies
// echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered: username,
// strongpassword, clock (HH:MM), isodate (YYYY-MM-DD) and notblank.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// strongPassword requires at least one lower-case letter, one upper-case
// letter and one digit.  Length is checked separately with min.
func strongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Validate checks i and returns *Error listing every violation, or nil.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	root := reflect.Indirect(reflect.ValueOf(i))
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fieldError(fe.Field(), fe))
		for _, extra := range cv.remaining(root, fe) {
			out.Fields = append(out.Fields, fieldError(fe.Field(), extra))
		}
	}
	return out
}

func fieldError(field string, fe validator.FieldError) FieldError {
	f := FieldError{Field: field, Message: message(fe)}
	if !sensitive(field) {
		f.RejectedValue = fe.Value()
	}
	return f
}

// remaining runs the rules listed after fe's failed tag on the same
// top-level field.  The validator stops at the first failure per field, but
// a caller should see every rule it broke.  A missing value reports only
// that it is required.
func (cv *Validator) remaining(root reflect.Value, fe validator.FieldError) []validator.FieldError {
	switch fe.Tag() {
	case "required", "notblank":
		return nil
	}
	if root.Kind() != reflect.Struct || strings.Count(fe.Namespace(), ".") != 1 || strings.Contains(fe.Namespace(), "[") {
		return nil
	}
	sf, ok := root.Type().FieldByName(fe.StructField())
	if !ok {
		return nil
	}
	value := reflect.Indirect(root.FieldByIndex(sf.Index))
	if !value.IsValid() {
		return nil
	}

	var out []validator.FieldError
	after := false
	for _, tag := range strings.Split(sf.Tag.Get("validate"), ",") {
		if tag == "dive" {
			break
		}
		if !after {
			after = tag == fe.ActualTag() || strings.HasPrefix(tag, fe.ActualTag()+"=")
			continue
		}
		if tag == "" || tag == "omitempty" || tag == "required" {
			continue
		}
		var verrs validator.ValidationErrors
		if err := cv.v.Var(value.Interface(), tag); errors.As(err, &verrs) {
			out = append(out, verrs...)
		}
	}
	return out
}

func sensitive(field string) bool {
	return strings.Contains(strings.ToLower(field), "password")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "username":
		return "may contain only letters, numbers and underscores"
	case "strongpassword":
		return "must contain at least one lowercase letter, one uppercase letter and one number"
	case "clock":
		return "must be a time in HH:MM format"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}
