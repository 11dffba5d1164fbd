package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidTotal        = errors.New("total amount must be non-negative")
	ErrMissingField        = errors.New("required field missing")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
