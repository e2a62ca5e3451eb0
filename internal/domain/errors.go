package domain

import "errors"

// ErrInvalidConfiguration is returned by boundary parsers for input that
// cannot be normalised into a valid request.
var ErrInvalidConfiguration = errors.New("invalid configuration")
