package validator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// Errors maps a JSON field name to a human readable problem.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Validate checks struct tags and returns nil when v is valid.
func Validate(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"_": err.Error()}
	}

	errs := make(Errors, len(verrs))
	for _, fe := range verrs {
		errs[fe.Field()] = describe(fe)
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required field: %s", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", capitalize(fe.Field()), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", capitalize(fe.Field()), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", capitalize(fe.Field()))
	default:
		return fmt.Sprintf("%s is invalid (%s)", capitalize(fe.Field()), fe.Tag())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
