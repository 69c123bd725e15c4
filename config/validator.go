package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/layering"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate

	tokenKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(yamlishFieldName)
		_ = v.RegisterValidation("token_key", func(fl validator.FieldLevel) bool {
			return tokenKeyPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("token_kind", func(fl validator.FieldLevel) bool {
			return layering.ParseKind(fl.Field().String()).IsLeaf()
		})
		validate = v
	})
	return validate
}

// Validate checks document structure. Token values and guards are checked
// when the document is applied to an engine.
func Validate(doc *Document) error {
	if doc == nil {
		return newValidationError("document", "document is nil", nil)
	}
	if err := validatorInstance().Struct(doc); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]struct{}, len(doc.Breakpoints))
	for i, bp := range doc.Breakpoints {
		if _, dup := seen[bp.Name]; dup {
			return newValidationError(fmt.Sprintf("breakpoints[%d].name", i), fmt.Sprintf("duplicate breakpoint %q", bp.Name), nil)
		}
		seen[bp.Name] = struct{}{}
	}
	for _, name := range doc.ComponentNames() {
		for bp := range doc.Components[name].Overrides {
			if _, ok := seen[bp]; !ok && bp != tokens.BaseBreakpointName {
				return newValidationError(fieldFor(name, "overrides", bp), fmt.Sprintf("unknown breakpoint %q", bp), nil)
			}
		}
	}
	return nil
}

func convertValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		return newValidationError(field, fmt.Sprintf("%s failed validation for tag '%s'", fe.Field(), fe.Tag()), err)
	}
	return newValidationError("", err.Error(), err)
}

func yamlishFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
