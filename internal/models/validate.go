package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// BloodTypes are the ABO/Rh groups accepted anywhere a blood type is entered.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// SeverityLevels are the patient severity values the dashboard filters on.
var SeverityLevels = []string{"minor", "intermedia", "major"}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func IsBloodType(s string) bool {
	for _, bt := range BloodTypes {
		if s == bt {
			return true
		}
	}
	return false
}

// FieldErrors maps a field name to a message meant for the person filling
// in the form.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Merge copies entries of other that fe does not already hold.
func (fe FieldErrors) Merge(other FieldErrors) FieldErrors {
	if fe == nil {
		fe = FieldErrors{}
	}
	for k, v := range other {
		if _, ok := fe[k]; !ok {
			fe[k] = v
		}
	}
	return fe
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		return IsBloodType(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks r against the schema of its variant and returns nil when
// every required field is present and well formed.
func Validate(r Registration) FieldErrors {
	return ValidateStruct(r)
}

// ValidateStruct runs the validate tags of any request struct and reports
// failures keyed by json field name.
func ValidateStruct(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		name := fe.Field()
		if i := strings.Index(name, "["); i > 0 {
			name = name[:i]
		}
		if _, seen := out[name]; !seen {
			out[name] = message(name, fe)
		}
	}
	return out
}

func message(name string, fe validator.FieldError) string {
	label := humanize(name)
	switch fe.Tag() {
	case "required":
		if name == "services" {
			return "List at least one service"
		}
		return label + " is required"
	case "emailaddr":
		return "Please enter a valid email address"
	case "bloodtype":
		return label + " must be one of " + strings.Join(BloodTypes, ", ")
	case "datetime":
		return label + " must be a date in YYYY-MM-DD form"
	case "oneof":
		return label + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		case reflect.Slice:
			return "List at least one service"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "latitude", "longitude":
		return label + " is out of range"
	}
	return label + " is invalid"
}

// humanize turns first_name into "First name".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
