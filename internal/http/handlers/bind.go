package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindForm binds a posted form into out. String fields are trimmed after
// binding, and required string fields must be non-empty once trimmed. On
// failure it returns per-field messages keyed by the field's form tag, for
// inline re-rendering.
func BindForm(ctx *gin.Context, out interface{}) (map[string]string, bool) {
	err := ctx.ShouldBind(out)

	if err != nil {
		return parseFormError(err, out), false
	}

	trimStringFields(out)

	if fields := missingAfterTrim(out); len(fields) > 0 {
		return fields, false
	}

	return nil, true
}

func trimStringFields(out interface{}) {
	v := reflect.ValueOf(out)

	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)

		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// missingAfterTrim re-checks required string fields once trimmed: a
// whitespace-only value satisfies the binding validator but not the form.
func missingAfterTrim(out interface{}) map[string]string {
	rootType := baseStructType(out)

	if rootType == nil {
		return nil
	}

	v := reflect.ValueOf(out)

	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	var fields map[string]string

	for i := 0; i < rootType.NumField(); i++ {
		sf := rootType.Field(i)

		if v.Field(i).Kind() != reflect.String || v.Field(i).String() != "" {
			continue
		}

		if !hasBindingRule(sf, "required") {
			continue
		}

		field := formTagForField(rootType, sf.Name)

		if field == "" {
			field = strings.ToLower(sf.Name)
		}

		if fields == nil {
			fields = make(map[string]string)
		}

		fields[field] = validationMessage("required", "")
	}

	return fields
}

func hasBindingRule(sf reflect.StructField, rule string) bool {
	for _, part := range strings.Split(sf.Tag.Get("binding"), ",") {
		if part == rule {
			return true
		}
	}

	return false
}

func parseFormError(err error, out interface{}) map[string]string {
	rootType := baseStructType(out)

	fields := make(map[string]string)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		for _, fieldError := range validatorError {
			field := formTagForField(rootType, fieldError.StructField())

			if field == "" {
				field = strings.ToLower(fieldError.Field())
			}

			fields[field] = validationMessage(fieldError.Tag(), fieldError.Param())
		}
		return fields
	}

	// Mapping errors (e.g. text posted into a numeric field) don't identify
	// the field, so answer with a form-level message.
	fields["form"] = "Some values could not be read, check the form and try again."
	return fields
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func formTagForField(rootType reflect.Type, structField string) string {
	if rootType == nil {
		return ""
	}

	f, ok := rootType.FieldByName(structField)

	if !ok {
		return ""
	}

	tag := f.Tag.Get("form")

	if tag == "" || tag == "-" {
		return ""
	}

	// strip options like ",default=x"
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}

	return tag
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		return fmt.Sprintf("Must be at most %s", param)
	default:
		return "Invalid value"
	}
}
