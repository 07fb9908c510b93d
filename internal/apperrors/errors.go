package apperrors

import "errors"

// Storage-level errors
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Business rule errors
var (
	ErrValidation         = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrAuctionClosed      = errors.New("auction has ended")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
