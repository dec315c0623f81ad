package plugin

import (
	"fmt"
	stdplugin "plugin"
)

// Symbol names every dynamic plugin module must export.
const (
	// SymbolVersion is an *int holding the plugin manager version the
	// module was built against.
	SymbolVersion = "PluginVersion"

	// SymbolInterface is a *string holding the interface identifier
	// the module implements.
	SymbolInterface = "PluginInterface"

	// SymbolInstancer is the module's Instancer factory.
	SymbolInstancer = "PluginInstancer"
)

// Module is a loaded plugin binary. The production implementation wraps
// the standard library plugin package; tests and embedders with their
// own loading scheme provide theirs through WithLoader.
type Module interface {
	// Lookup resolves an exported symbol by name.
	Lookup(name string) (any, error)

	// Close releases the module. Close is called once per successful
	// Open, on unload or on an error path of the same load. When that
	// Close fails on unload, the next Load of the plugin calls Close on
	// the same module again before opening it anew.
	Close() error
}

// Loader opens plugin binaries by path.
type Loader interface {
	Open(path string) (Module, error)
}

// nativeLoader is the default Loader, backed by the standard library
// plugin package.
type nativeLoader struct{}

func (nativeLoader) Open(path string) (Module, error) {
	p, err := stdplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening module %s: %w", path, err)
	}
	return nativeModule{p: p}, nil
}

type nativeModule struct {
	p *stdplugin.Plugin
}

func (m nativeModule) Lookup(name string) (any, error) {
	sym, err := m.p.Lookup(name)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// Close releases only this record's reference. The Go runtime keeps
// loaded modules mapped for the process lifetime; the bookkeeping above
// this layer (states, used-by, instances) is what guards correctness.
func (m nativeModule) Close() error { return nil }
