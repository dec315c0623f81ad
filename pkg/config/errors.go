package config

import "errors"

// Mutation failure causes. Mutators never apply a partial change: they
// validate first and return one of these unchanged-state errors,
// possibly wrapped with call-site context; match with errors.Is.
var (
	// ErrInvalid is returned by mutators and Save on a configuration
	// that failed to open or parse.
	ErrInvalid = errors.New("config: configuration is invalid")

	// ErrReadOnly is returned by mutators and Save on a configuration
	// opened with ReadOnly or constructed from an in-memory source.
	ErrReadOnly = errors.New("config: configuration is read-only")

	// ErrInvalidName is returned for empty names, group or key names
	// containing the / separator, and key names containing whitespace
	// or =.
	ErrInvalidName = errors.New("config: invalid group or key name")

	// ErrInvalidValue is returned for values that cannot be stored on a
	// single line.
	ErrInvalidValue = errors.New("config: value contains a line terminator")

	// ErrUniqueGroup is returned when adding a group would violate
	// UniqueGroups.
	ErrUniqueGroup = errors.New("config: group already exists")

	// ErrUniqueKey is returned when adding a key would violate
	// UniqueKeys.
	ErrUniqueKey = errors.New("config: key already exists")

	// ErrNotFound is returned when a named group or key has no
	// occurrence at all.
	ErrNotFound = errors.New("config: group or key not found")

	// ErrIndexOutOfRange is returned when a group or key exists but
	// not at the requested occurrence index.
	ErrIndexOutOfRange = errors.New("config: occurrence index out of range")
)
