package model

import "errors"

var (
	ErrListingNotFound    = errors.New("job posting not found")
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
)
