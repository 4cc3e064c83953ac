package db

import "errors"

// Sentinel errors returned (wrapped) by the stores. Handlers map them to
// HTTP statuses with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)
