package models

import "errors"

var (
	ErrNotFound           = errors.New("file not found")
	ErrForbidden          = errors.New("forbidden")
	ErrMalformedRange     = errors.New("malformed range")
	ErrUnsatisfiableRange = errors.New("range not satisfiable")

	ErrSessionNotFound  = errors.New("session not found")
	ErrAnonymousSession = errors.New("session has no user")
)
