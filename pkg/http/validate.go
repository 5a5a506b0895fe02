package http

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields under the names clients send
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("product_url", productURL); err != nil {
		panic(err)
	}
	return v
}

// productURL accepts absolute http(s) URLs with a host, the only kind the
// fetcher can scrape.
func productURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ReadAndValidateRequest binds the body into req, fills `default` tags and
// validates it. It returns nil or a []ValidationError for the 400 envelope.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return []ValidationError{{Code: "ERR_MALFORMED_BODY", Message: fmt.Sprint(he.Message)}}
		}
		return []ValidationError{{Code: "ERR_MALFORMED_BODY", Message: err.Error()}}
	}
	if err := defaults.Set(req); err != nil {
		return []ValidationError{{Code: "ERR_DEFAULTS", Message: err.Error()}}
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validationErrors(err)
	}
	return nil
}

func validationErrors(err error) []ValidationError {
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return []ValidationError{{Code: "ERR_VALIDATION", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fes))
	for _, fe := range fes {
		out = append(out, ValidationError{
			Code:    errorCode(fe.Tag()),
			Field:   fieldPath(fe),
			Message: describe(fe),
			Params:  ruleParams(fe),
		})
	}
	return out
}

func errorCode(tag string) string {
	if tag == "product_url" {
		return "ERR_URL"
	}
	return "ERR_" + strings.ToUpper(tag)
}

// fieldPath drops the request type from the namespace, so nested fields come
// out as messages[1].content.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

func describe(fe validator.FieldError) string {
	field, p := fieldPath(fe), fe.Param()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url", "product_url":
		return field + " must be an absolute http or https URL"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s", field, p, unit(fe))
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s", field, p, unit(fe))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, p)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(strings.Fields(p), ", "))
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func ruleParams(fe validator.FieldError) map[string]interface{} {
	switch fe.Tag() {
	case "min", "gte":
		return map[string]interface{}{"min": fe.Param()}
	case "max", "lte":
		return map[string]interface{}{"max": fe.Param()}
	case "gt", "lt":
		return map[string]interface{}{"value": fe.Param()}
	case "oneof":
		return map[string]interface{}{"options": strings.Fields(fe.Param())}
	}
	return nil
}
