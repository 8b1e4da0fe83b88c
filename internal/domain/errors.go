package domain

import "errors"

// Store-level errors shared by every backend.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)
