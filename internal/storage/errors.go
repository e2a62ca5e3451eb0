package storage

import "errors"

var (
	// ErrNotFound: no instrument, price, report or user row matches the key.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey: the natural key (symbol, (user, symbol), (symbol, date),
	// month or run ID) already exists. Rows are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput: a row failed validation before reaching the backend.
	ErrInvalidInput = errors.New("invalid input")
)
