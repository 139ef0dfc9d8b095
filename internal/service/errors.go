package service

import "errors"

var (
	ErrInvalidDuration  = errors.New("invalid expiresIn format, use a number followed by h, d or w")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidCount     = errors.New("product count must be positive")
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrPersistence      = errors.New("failed to persist state")
)
