package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the handlers. Anything not matching one of these is internal.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")

	ErrMissingFields     = fmt.Errorf("%w: missing required fields", ErrInvalidRequest)
	ErrPasswordTooLong   = fmt.Errorf("%w: password too long", ErrInvalidRequest)
	ErrUserAlreadyExists = fmt.Errorf("%w: user with this email already exists", ErrConflict)

	// Returned for both an unknown email and a wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)
