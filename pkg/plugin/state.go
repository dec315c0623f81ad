package plugin

// LoadState describes the lifecycle position of a plugin record. States
// up to LoadOk are produced by Load, the rest by Unload. There is no
// terminal state: a record lives until the process exits, unless a
// directory rescan drops it because it is not loaded and its metadata
// file vanished.
type LoadState int

const (
	// NotFound means the plugin is unknown to the manager, or its
	// metadata references a binary that does not exist.
	NotFound LoadState = iota

	// WrongPluginVersion means the module was built against a
	// different plugin manager version.
	WrongPluginVersion

	// WrongInterfaceVersion means the module exposes a different
	// interface identifier than the manager expects.
	WrongInterfaceVersion

	// WrongMetadataFile means the metadata file is missing or failed
	// to parse.
	WrongMetadataFile

	// UnresolvedDependency means a declared dependency could not be
	// loaded, including dependency cycles.
	UnresolvedDependency

	// LoadFailed means the module could not be opened or lacks the
	// required symbols.
	LoadFailed

	// LoadOk means the plugin is loaded with module and instancer set.
	LoadOk

	// NotLoaded means the plugin is known and loadable but currently
	// not loaded.
	NotLoaded

	// UnloadFailed means closing the module failed; the record keeps
	// its handle and a later Load retries from scratch.
	UnloadFailed

	// IsRequired means another loaded plugin depends on this one, so
	// it cannot be unloaded.
	IsRequired

	// IsStatic marks statically linked plugins; Load and Unload are
	// no-ops returning IsStatic.
	IsStatic

	// IsUsed means live instances of this plugin exist, so it cannot
	// be unloaded.
	IsUsed
)

// Loaded reports whether the state allows instantiation.
func (s LoadState) Loaded() bool {
	return s == LoadOk || s == IsStatic
}

func (s LoadState) String() string {
	switch s {
	case NotFound:
		return "NotFound"
	case WrongPluginVersion:
		return "WrongPluginVersion"
	case WrongInterfaceVersion:
		return "WrongInterfaceVersion"
	case WrongMetadataFile:
		return "WrongMetadataFile"
	case UnresolvedDependency:
		return "UnresolvedDependency"
	case LoadFailed:
		return "LoadFailed"
	case LoadOk:
		return "LoadOk"
	case NotLoaded:
		return "NotLoaded"
	case UnloadFailed:
		return "UnloadFailed"
	case IsRequired:
		return "IsRequired"
	case IsStatic:
		return "IsStatic"
	case IsUsed:
		return "IsUsed"
	}
	return "Unknown"
}
