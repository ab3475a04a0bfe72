package ioregistry

import "errors"

// ErrNoHandler is returned when no writer (including by ancestor
// resolution) or reader is registered for a type.
var ErrNoHandler = errors.New("ioregistry: no handler registered for type")
