package service

import "errors"

var (
	ErrNotFound      = errors.New("error not found")
	ErrForbidden     = errors.New("error forbidden")
	ErrInvalidInput  = errors.New("error invalid input")
	ErrAlreadyExists = errors.New("error already exists")
	ErrUnavailable   = errors.New("error unavailable")
)
