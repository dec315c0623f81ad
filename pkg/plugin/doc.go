// Package plugin manages named plugins discovered through configuration
// metadata files: loading and unloading of dynamic modules, interface
// compatibility checks, recursive dependency resolution with cycle
// detection, and reference counting of both dependents and live
// instances.
//
// A Manager watches one plugin directory. Every <name>.conf file in it
// describes one dynamic plugin whose binary lives next to it as
// <name>.so. Statically linked plugins register themselves through
// RegisterStatic before the first manager is constructed and are
// permanently in the IsStatic state.
//
// All failures surface as LoadState values; a record either advances to
// LoadOk with module and instancer set, or it stays in a pre-load state
// with neither. OS-level error detail (dlopen text, file I/O) goes to
// the debug stream and is not part of the state taxonomy.
//
// Managers are not safe for concurrent mutation; the process-wide
// record map is still guarded internally so that static registration
// from package init functions stays well-defined.
package plugin
