package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator builds the validator shared by all handlers. Field
// names in violation messages come from the json tag, so clients see
// the names they actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// firstViolation renders a validation error as a message naming the
// first violated field, mirroring the API's historical error shape
// ("id_user is required", "status is invalid", ...). Validation is a
// plain tagged result for the caller: handlers turn the string into a
// 400 response, never a panic or a thrown error.
func firstViolation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s is invalid", fe.Field())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a UUID", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s is too small", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
