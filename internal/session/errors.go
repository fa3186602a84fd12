package session

import "errors"

// Sentinel errors
var (
	// ErrInvalidCredentials is returned when the login exchange is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSignupRejected is returned when the server rejects a registration.
	ErrSignupRejected = errors.New("signup rejected")

	// ErrNoRefreshToken is returned when a renewal is attempted with no
	// refresh token held.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshRejected is returned when every refresh endpoint rejects
	// the exchange.
	ErrRefreshRejected = errors.New("refresh rejected")

	// ErrSessionExpired is returned when the identity probe fails even
	// after a token renewal.
	ErrSessionExpired = errors.New("session expired")

	// ErrProtocolMismatch is returned when a token response carries no
	// recognizable access token field.
	ErrProtocolMismatch = errors.New("response missing access token")
)
