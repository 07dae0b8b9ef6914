package userauth

import "errors"

var (
	// ErrMissingField is returned when a required credential field (the
	// configured login attribute or the password) is absent or empty.
	ErrMissingField = errors.New("required credential field missing")
	// ErrUserNotFound is returned when no record matches the given
	// credentials, or when a hashed credential other than the password
	// fails verification.
	ErrUserNotFound = errors.New("user not found with given credentials")
	// ErrInvalidCredentials is returned when a user matched every plain
	// credential but the password hash did not verify. Callers must present
	// this to end users identically to [ErrUserNotFound].
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLockedOut is returned while the (login, source address) pair is
	// inside an active throttle lockout window.
	ErrLockedOut = errors.New("login temporarily locked")
	// ErrUserNotActivated is returned when activation is required and the
	// resolved user has not activated their account.
	ErrUserNotActivated = errors.New("user not activated")
	// ErrUserAlreadyActivated is returned when activating an activated user.
	ErrUserAlreadyActivated = errors.New("user already activated")
	// ErrInvalidActivationCode is returned when an activation code does not
	// match the user's pending code.
	ErrInvalidActivationCode = errors.New("invalid activation code")
	// ErrRegistrationDisabled is returned when self-registration is off.
	ErrRegistrationDisabled = errors.New("registration disabled")
	// ErrServiceNotReady is returned when a Service is used before its
	// required dependencies were supplied.
	ErrServiceNotReady = errors.New("service not initialized")
)
