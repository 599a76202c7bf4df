package services

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validator returns the validator shared by services and the HTTP layer.
func Validator() *validator.Validate { return validate }

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}
