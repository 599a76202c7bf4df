package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/teamsales/salesportal/repositories"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrForbidden is returned when the actor's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation wraps input that failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned for duplicates such as an existing email or organization name.
	ErrConflict = repositories.ErrConflict
	// ErrInvalidCredentials wraps the auth provider's sign-in rejection.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrWriteFailed is the message shown when a report could not be stored.
const ErrWriteFailed = "Could not save the report"

// validationError wraps a failure message or validator result in ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrValidation, describe(verrs))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func describe(verrs validator.ValidationErrors) string {
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += ", "
		}
		switch fe.Tag() {
		case "required", "required_if":
			msg += fmt.Sprintf("%s is required", fe.Field())
		case "gte":
			msg += fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "min":
			msg += fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param())
		default:
			msg += fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
		}
	}
	return msg
}
