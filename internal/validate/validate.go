package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports client-side constraint violations. It never reaches
// the network: inputs are checked before a request is built.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

// Validator checks input structs against their validate tags, including the
// campus_email rule that restricts accounts to the configured email domain.
type Validator struct {
	validate *validator.Validate
	domain   string
}

// New builds a validator enforcing the given campus email domain.
func New(allowedDomain string) *Validator {
	v := &Validator{
		validate: validator.New(),
		domain:   allowedDomain,
	}

	v.validate.RegisterValidation("campus_email", func(fl validator.FieldLevel) bool {
		return strings.HasSuffix(strings.ToLower(fl.Field().String()), "@"+strings.ToLower(v.domain))
	})

	return v
}

// Struct validates s and returns a *ValidationError describing every failed
// field, or nil if s is valid.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = v.message(fe)
	}
	return &ValidationError{Fields: fields}
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "campus_email":
		return fmt.Sprintf("only @%s email addresses are allowed", v.domain)
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
