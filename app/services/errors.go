// Package services implements the domain logic between the HTTP controllers
// and the Mongo repositories. Services depend on narrow store interfaces so
// tests can run against in-memory fakes.
package services

import "errors"

// Sentinel errors. Controllers map these onto HTTP status codes.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUpstream       = errors.New("payment gateway unavailable")
)
