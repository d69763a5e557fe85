package apperr

import "errors"

var (
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrDataIntegrity = errors.New("data integrity violation")
)
