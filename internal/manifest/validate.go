package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Field names in errors follow
// the yaml tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks structural rules: required fields, unique project ids and
// unique document paths within each project.
//
// References to ids that are not declared are allowed; they are dangling
// references and are skipped when cones are built.
func Validate(m *Manifest) error {
	if m == nil {
		return &Error{Field: "manifest", Message: "manifest is nil"}
	}

	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate manifest: %w", err)
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &Error{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return out
}

// fieldPath converts "Manifest.projects[1].id" into "projects[1].id".
func fieldPath(ns string) string {
	return strings.TrimPrefix(ns, "Manifest.")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "unique":
		return fmt.Sprintf("entries must have unique %s values", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
