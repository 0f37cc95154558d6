package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// ValidationDetails flattens validator errors into field/rule pairs for API responses.
func ValidationDetails(errs validator.ValidationErrors) []map[string]string {
	details := make([]map[string]string, 0, len(errs))
	for _, fe := range errs {
		detail := map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		}
		if fe.Param() != "" {
			detail["param"] = fe.Param()
		}
		details = append(details, detail)
	}
	return details
}
