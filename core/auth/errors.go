package auth

import "errors"

// Failure taxonomy for the auth service. Handlers map these to HTTP
// responses; anything not in this list is an internal error and must not
// reach the client with detail.
var (
	// ErrValidation covers missing or malformed caller input. Safe to show.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for unknown username and wrong
	// password alike. The two cases must stay indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOTPRequired: password was correct but the account has a second
	// factor and no code was supplied.
	ErrOTPRequired = errors.New("one-time code required")

	// ErrOTPInvalid: password was correct, the supplied code was not.
	ErrOTPInvalid = errors.New("one-time code invalid")

	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)
