// Package param implements the JourneyMAPS parameter tree: a small family of
// tagged node types (Value, Dict, Invisible, Buffer, YBuffer, XBuffer, Refer)
// used to build hierarchical, memoized, usage-tracked experiment environments.
package param

import "errors"

// ErrLockedMutation is returned when a user tries to mutate a locked Dict.
var ErrLockedMutation = errors.New("param: locked mutation")

// ErrUnsupportedValueType is returned when a value has no canonical SQL
// representation and carries no explicit DType override.
var ErrUnsupportedValueType = errors.New("param: unsupported value type for sql projection")

// ErrKeyNotFound is returned by dotted-path lookups (Refer resolution,
// cache replay) when a segment does not exist.
var ErrKeyNotFound = errors.New("param: key not found")

// ErrShapeMismatch is returned by MergeUsage when two trees being merged
// were not deep copies of the same structure.
var ErrShapeMismatch = errors.New("param: usage merge shape mismatch")
