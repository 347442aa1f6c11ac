package auth

import "errors"

// Authentication errors returned by the JWT service and consumed by the
// API layer's error mapping.
var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries invalid claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's not-before is in the
	// future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType is returned when an access token is presented where
	// a refresh token is required, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken is returned when a refresh token fails
	// validation.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken is returned when a refresh token's expiry has
	// passed.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)
