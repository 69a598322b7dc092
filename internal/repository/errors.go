package repository

import "errors"

var (
	// ErrNotFound indicates no stored context exists for the URL.
	ErrNotFound = errors.New("context not found")
	// ErrJobNotFound indicates no job exists with the given ID.
	ErrJobNotFound = errors.New("job not found")
)
