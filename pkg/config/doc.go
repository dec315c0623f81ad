// Package config implements a hierarchical, line-oriented configuration
// format with byte-exact round-trip preservation.
//
// A Configuration is a tree of named groups holding an ordered mix of
// key-value pairs, comments and blank lines. Files are parsed eagerly at
// Open, mutated in memory and written back with Save. Lines that were
// not touched are emitted verbatim, including their whitespace, so
// saving an unmodified configuration reproduces the source file byte for
// byte (group headers are regenerated from the tree, which is only
// observable for headers that were not in canonical [path] form).
//
// The format:
//
//	# comment (also ;)
//	key=value
//	quoted=" value with significant whitespace "
//
//	[group/subgroup]
//	key=value
//
// Group headers name the full path from the root, separated by /.
// Repeated sibling groups and repeated keys are permitted and addressed
// by occurrence index, unless the UniqueGroups/UniqueKeys flags collapse
// them at parse time.
//
// Typed access goes through the package-level generic accessors (Get,
// Set, Add and friends) which delegate scalar conversion to
// pkg/confval.
package config
