// Package common defines sentinel errors and constants shared by the
// server, the client and the admin CLI. Callers match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")

	// Directory lookups.
	ErrUserNotFound = errors.New("user not found")
	ErrHostNotFound = errors.New("host not found")
	ErrNoReadings   = errors.New("no readings yet")

	// Token errors.
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrTokenEncoding  = errors.New("token encoding error")
	ErrTokenExpired   = errors.New("token expired")

	// Revocation store transport failure.
	ErrStore = errors.New("revocation store error")
)
