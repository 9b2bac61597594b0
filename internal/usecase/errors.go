package usecase

import (
	"errors"
	"fmt"

	"cargo-delivery/pkg/utils"
)

// Sentinel errors for the domain failure kinds. Handlers map these to
// HTTP status codes with errors.Is, so services must wrap rather than
// replace them.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDriverNotApproved  = errors.New("driver account is not approved yet")
)

func validationError(errs map[string]string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
}
