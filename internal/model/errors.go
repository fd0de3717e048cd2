package model

import "errors"

// Sentinel errors shared by the store and API layers. Store functions wrap
// these with context; the API layer maps them to HTTP status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrCategoryMismatch = errors.New("category mismatch")
)
