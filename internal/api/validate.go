// File: internal/api/validate.go
package api

import (
	"scholarhub_client/internal/common"

	"github.com/go-playground/validator/v10"
)

// One validator instance for all request payloads; it is safe for concurrent use.
var validate = validator.New()

// validateInput runs presence checks on a request payload before it leaves
// the client, so missing-field mistakes surface inline instead of as 4xx noise.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return common.NewValidationError(verrs)
	}
	return err
}
