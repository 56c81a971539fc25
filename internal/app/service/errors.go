package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail is returned when signing up with a registered email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername is returned when signing up with a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateFolderName is returned when the owner already has a folder with that name.
	ErrDuplicateFolderName = errors.New("folder with this name already exists")
	// ErrInvalidCredentials covers both unknown accounts and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFoundOrUnauthorized hides whether a resource is missing or owned by someone else.
	ErrNotFoundOrUnauthorized = errors.New("not found or unauthorized")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
