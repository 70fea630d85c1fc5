package shared

import "errors"

var (
	// ErrValidation indicates missing or malformed required input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated indicates a missing, malformed, expired or badly signed credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrAccountInactive indicates the resolved user account is deactivated.
	ErrAccountInactive = errors.New("account inactive")
	// ErrForbidden indicates an authenticated actor is not permitted on this row.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a row that is absent or outside the actor's tenant.
	// The two causes are deliberately indistinguishable to the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is reserved for uniqueness violations such as duplicate emails.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
