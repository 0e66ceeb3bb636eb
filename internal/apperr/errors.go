// Package apperr holds the error kinds shared by the identity, auth and
// message packages. Callers match them with errors.Is; the HTTP boundary maps
// them to status codes.
package apperr

import "errors"

var (
	// ErrInvalidInput marks a missing or blank required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateIdentity is returned when a username is already registered.
	ErrDuplicateIdentity = errors.New("username taken")

	// ErrNotFound is returned when an identity or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the requester may not act on a resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidToken is returned for tokens that fail signature or payload checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned by login when the username/password pair
	// does not authenticate. It never says which half was wrong.
	ErrInvalidCredentials = errors.New("invalid username/password")
)
