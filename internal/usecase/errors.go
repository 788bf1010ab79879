package usecase

import crerr "github.com/cockroachdb/errors"

var (
	// ErrInvalidInput marks requests that fail validation before any fetch.
	ErrInvalidInput = crerr.New("invalid input")
	// ErrNotFound marks a username that does not resolve to a platform user.
	// It is the only upstream condition surfaced as an error; everything else
	// degrades to empty data.
	ErrNotFound = crerr.New("resource not found")
)
