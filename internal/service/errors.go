// Package service implements credential, token and account logic for the auth service.
package service

import "errors"

// Validation errors.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrMissingCredentials = errors.New("missing email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrImageTooLarge      = errors.New("image too large")
)

// Authentication and lookup errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrStorageDisabled    = errors.New("avatar storage is not configured")
)
