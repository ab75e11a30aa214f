// Package validation wraps go-playground/validator with the field rules used by
// request payloads (tag colors, slugs, usernames) and human-readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is the kind every validation failure unwraps to.
var ErrInvalid = errors.New("validation failed")

var (
	tagColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	tagSlugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9@+-]+$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Error carries one message per failing field, keyed by its JSON name.
type Error struct {
	Fields map[string]string
}

// NewError builds an Error for a single field.
func NewError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalid }

func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("tagcolor", func(fl validator.FieldLevel) bool {
			return IsTagColor(fl.Field().String())
		})
		_ = validate.RegisterValidation("tagslug", func(fl validator.FieldLevel) bool {
			return IsTagSlug(fl.Field().String())
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return IsUsername(fl.Field().String())
		})
	})
	return validate
}

// IsTagColor accepts #RGB and #RRGGBB hex colors.
func IsTagColor(s string) bool { return tagColorPattern.MatchString(s) }

func IsTagSlug(s string) bool { return tagSlugPattern.MatchString(s) }

// IsUsername rejects reserved names ("me", anything starting with "deleted")
// as well as characters outside [a-zA-Z0-9@+-].
func IsUsername(s string) bool {
	if !usernamePattern.MatchString(s) {
		return false
	}
	lower := strings.ToLower(s)
	return lower != "me" && !strings.HasPrefix(lower, "deleted")
}

// Struct validates s and returns nil or an *Error.
func Struct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewError("non_field_errors", err.Error())
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key := fieldPath(fe.Namespace())
		if _, seen := out.Fields[key]; !seen {
			out.Fields[key] = translate(fe)
		}
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var messages = map[string]string{
	"required": "this field is required",
	"email":    "enter a valid email address",
	"tagcolor": "must be a hex color like #1A2B3C or #abc",
	"tagslug":  "may contain only latin letters, digits, '-' and '_'",
	"username": "may contain only latin letters, digits and @+-, and must not be a reserved name",
	"unique":   "must not contain duplicates",
}

var messagesWithParam = map[string]string{
	"gte": "must be greater than or equal to %s",
	"lte": "must be less than or equal to %s",
	"gt":  "must be greater than %s",
	"lt":  "must be less than %s",
}

func translate(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Param())
	}

	isString := fe.Kind().String() == "string"
	isSlice := fe.Kind().String() == "slice"
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if isSlice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
