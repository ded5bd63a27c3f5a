package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a bound request DTO against its validate tags.
// The returned validator.ValidationErrors is translated to a 400 by the
// error handler middleware, so controllers can just return it.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}
