package domain

import "errors"

// Sentinel errors for the account domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates no user exists for the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates a user with the same username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials indicates the username/password pair did not match.
	// Deliberately indistinguishable from an unknown username at the API surface.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidUser indicates a registration payload violates domain constraints.
	ErrInvalidUser = errors.New("invalid user")
)
