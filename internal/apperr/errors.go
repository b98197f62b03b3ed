package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrDeleted     = errors.New("deleted")
	ErrValidation  = errors.New("validation failed")
	ErrTransport   = errors.New("transport failure")
	ErrInvalidDate = errors.New("invalid date")
)
