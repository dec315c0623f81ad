package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schmitthub/strut/internal/logger"
	"github.com/schmitthub/strut/pkg/config"
)

// Manager discovers plugins through metadata files in one directory and
// drives their lifecycle. Records live in the process-wide map; a
// manager owns the dynamic records it discovered plus every static
// record matching its interface identifier.
type Manager struct {
	iface  string
	dir    string
	loader Loader

	moduleSuffix   string
	metadataSuffix string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLoader replaces the default module loader. Tests and embedders
// with their own loading scheme use this.
func WithLoader(l Loader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithModuleSuffix overrides the plugin binary suffix, default ".so".
func WithModuleSuffix(suffix string) Option {
	return func(m *Manager) { m.moduleSuffix = suffix }
}

// WithMetadataSuffix overrides the metadata file suffix, default
// ".conf".
func WithMetadataSuffix(suffix string) Option {
	return func(m *Manager) { m.metadataSuffix = suffix }
}

// NewManager creates a manager for the given interface identifier and
// plugin directory. The first manager constructed drains the static
// registration queue; the directory is scanned immediately.
func NewManager(iface, dir string, opts ...Option) *Manager {
	m := &Manager{
		iface:          iface,
		dir:            dir,
		loader:         nativeLoader{},
		moduleSuffix:   ".so",
		metadataSuffix: ".conf",
	}
	for _, opt := range opts {
		opt(m)
	}

	global.mu.Lock()
	drainStaticsLocked()
	m.reloadDirectoryLocked()
	global.mu.Unlock()
	return m
}

// PluginInterface returns the interface identifier plugins must match.
func (m *Manager) PluginInterface() string { return m.iface }

// PluginDirectory returns the directory scanned for dynamic plugins.
func (m *Manager) PluginDirectory() string { return m.dir }

// SetPluginDirectory changes the plugin directory and rescans it.
func (m *Manager) SetPluginDirectory(dir string) {
	m.dir = dir
	m.ReloadPluginDirectory()
}

// ReloadPluginDirectory reconciles the record map with the directory:
// newly appeared metadata files become NotLoaded records, records that
// are not loaded and whose backing file vanished are dropped, loaded
// records are left untouched.
func (m *Manager) ReloadPluginDirectory() {
	global.mu.Lock()
	defer global.mu.Unlock()
	m.reloadDirectoryLocked()
}

func (m *Manager) reloadDirectoryLocked() {
	present := make(map[string]bool)

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		logger.Debug().Err(err).Str("dir", m.dir).Msg("cannot read plugin directory")
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), m.metadataSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), m.metadataSuffix)
		present[name] = true

		r, exists := global.records[name]
		switch {
		case !exists:
			global.records[name] = m.newDynamicRecordLocked(name)
		case r.state == IsStatic:
			// A dynamic plugin shadowing a static one is skipped.
			logger.Debug().Str("plugin", name).Msg("dynamic plugin shadows static plugin, skipping")
		case r.manager == m && r.state != LoadOk:
			m.reloadMetadataLocked(r)
		}
	}

	// Snapshot the key set before sweeping: dropping records while
	// ranging the live map would skip entries.
	names := make([]string, 0, len(global.records))
	for name := range global.records {
		names = append(names, name)
	}
	for _, name := range names {
		r := global.records[name]
		if r.manager != m || r.state == LoadOk || r.state == IsStatic {
			continue
		}
		if !present[name] {
			delete(global.records, name)
			logger.Debug().Str("plugin", name).Msg("plugin metadata vanished, record dropped")
		}
	}
}

func (m *Manager) newDynamicRecordLocked(name string) *record {
	conf := config.Open(m.metadataPath(name), config.ReadOnly)
	r := &record{
		name:    name,
		conf:    conf,
		meta:    newMetadata(name, conf),
		manager: m,
	}
	switch {
	case !conf.IsValid():
		r.state = WrongMetadataFile
	case !m.binaryExists(name):
		r.state = NotFound
	default:
		r.state = NotLoaded
	}
	return r
}

// reloadMetadataLocked re-reads the metadata file of an unloaded
// dynamic record so that on-disk changes to dependency declarations are
// picked up. Loaded and static records are left untouched.
func (m *Manager) reloadMetadataLocked(r *record) {
	if r.state == LoadOk || r.state == IsStatic {
		return
	}
	conf := config.Open(m.metadataPath(r.name), config.ReadOnly)
	r.conf = conf
	r.meta = newMetadata(r.name, conf)
	switch {
	case !conf.IsValid():
		r.state = WrongMetadataFile
	case !m.binaryExists(r.name):
		r.state = NotFound
	default:
		if r.state != UnloadFailed {
			r.state = NotLoaded
		}
	}
}

func (m *Manager) metadataPath(name string) string {
	return filepath.Join(m.dir, name+m.metadataSuffix)
}

func (m *Manager) binaryPath(name string) string {
	return filepath.Join(m.dir, name+m.moduleSuffix)
}

func (m *Manager) binaryExists(name string) bool {
	_, err := os.Stat(m.binaryPath(name))
	return err == nil
}

// owns reports whether the record belongs to this manager: dynamic
// records it discovered and static records matching its interface.
func (m *Manager) owns(r *record) bool {
	if r.state == IsStatic {
		return r.iface == m.iface
	}
	return r.manager == m
}

// PluginList returns the sorted names of all plugins known to this
// manager.
func (m *Manager) PluginList() []string {
	global.mu.Lock()
	defer global.mu.Unlock()

	var names []string
	for name, r := range global.records {
		if m.owns(r) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Metadata returns the metadata of a plugin, or nil when the plugin is
// unknown.
func (m *Manager) Metadata(name string) *Metadata {
	global.mu.Lock()
	defer global.mu.Unlock()

	if r, ok := global.records[name]; ok && m.owns(r) {
		return r.meta
	}
	return nil
}

// LoadState returns the current state of a plugin, NotFound for
// unknown names.
func (m *Manager) LoadState(name string) LoadState {
	global.mu.Lock()
	defer global.mu.Unlock()

	if r, ok := global.records[name]; ok && m.owns(r) {
		return r.state
	}
	return NotFound
}

// Load loads a plugin and its declared dependencies, recursively. The
// returned state is LoadOk or IsStatic on success; any other value
// names the failure. Dependencies loaded before a later step fails are
// not rolled back.
func (m *Manager) Load(name string) LoadState {
	global.mu.Lock()
	defer global.mu.Unlock()
	return m.loadLocked(name, make(map[string]struct{}))
}

func (m *Manager) loadLocked(name string, inProgress map[string]struct{}) LoadState {
	r, ok := global.records[name]
	if !ok || !m.owns(r) {
		return NotFound
	}
	if r.state == LoadOk || r.state == IsStatic {
		return r.state
	}
	if _, busy := inProgress[name]; busy {
		// Dependency cycle; the re-entrant load can never succeed.
		logger.Warn().Str("plugin", name).Msg("dependency cycle detected")
		return UnresolvedDependency
	}
	inProgress[name] = struct{}{}

	m.reloadMetadataLocked(r)
	if r.state == WrongMetadataFile || r.state == NotFound {
		return r.state
	}

	for _, dep := range r.meta.Depends() {
		if st := m.loadLocked(dep, inProgress); st != LoadOk && st != IsStatic {
			logger.Warn().
				Str("plugin", name).
				Str("dependency", dep).
				Stringer("state", st).
				Msg("cannot load plugin dependency")
			r.state = UnresolvedDependency
			return r.state
		}
	}

	// A record left in UnloadFailed may still hold its old handle;
	// release it before opening the module again.
	if r.module != nil {
		_ = r.module.Close()
		r.module = nil
	}

	module, err := m.loader.Open(m.binaryPath(name))
	if err != nil {
		logger.Error().Err(err).Str("plugin", name).Msg("cannot open plugin module")
		r.state = LoadFailed
		return r.state
	}

	version, err := lookupInt(module, SymbolVersion)
	if err != nil {
		logger.Error().Err(err).Str("plugin", name).Msg("cannot resolve plugin version symbol")
		_ = module.Close()
		r.state = LoadFailed
		return r.state
	}
	if version != Version {
		logger.Warn().
			Str("plugin", name).
			Int("version", version).
			Int("expected", Version).
			Msg("plugin built against wrong plugin manager version")
		_ = module.Close()
		r.state = WrongPluginVersion
		return r.state
	}

	iface, err := lookupString(module, SymbolInterface)
	if err != nil {
		logger.Error().Err(err).Str("plugin", name).Msg("cannot resolve plugin interface symbol")
		_ = module.Close()
		r.state = LoadFailed
		return r.state
	}
	if iface != m.iface {
		logger.Warn().
			Str("plugin", name).
			Str("interface", iface).
			Str("expected", m.iface).
			Msg("plugin implements different interface")
		_ = module.Close()
		r.state = WrongInterfaceVersion
		return r.state
	}

	instancer, err := lookupInstancer(module, SymbolInstancer)
	if err != nil {
		logger.Error().Err(err).Str("plugin", name).Msg("cannot resolve plugin instancer symbol")
		_ = module.Close()
		r.state = LoadFailed
		return r.state
	}

	r.module = module
	r.instancer = instancer
	r.state = LoadOk
	for _, dep := range r.meta.Depends() {
		if depRecord, ok := global.records[dep]; ok {
			depRecord.addUsedBy(name)
		}
	}
	logger.Debug().Str("plugin", name).Msg("plugin loaded")
	return r.state
}

// Unload unloads a plugin. NotLoaded reports success; IsStatic,
// IsRequired, IsUsed and UnloadFailed name the reason the plugin is
// still loaded. Unloading an already unloaded plugin re-reads its
// metadata and reports the resulting state.
func (m *Manager) Unload(name string) LoadState {
	global.mu.Lock()
	defer global.mu.Unlock()
	return m.unloadLocked(name)
}

func (m *Manager) unloadLocked(name string) LoadState {
	r, ok := global.records[name]
	if !ok || !m.owns(r) {
		return NotFound
	}
	if r.state == IsStatic {
		return IsStatic
	}
	if r.state != LoadOk {
		m.reloadMetadataLocked(r)
		return r.state
	}
	if len(r.instances) > 0 {
		return IsUsed
	}
	if len(r.usedBy) > 0 {
		return IsRequired
	}

	if err := r.module.Close(); err != nil {
		logger.Error().Err(err).Str("plugin", name).Msg("cannot close plugin module")
		r.state = UnloadFailed
		return r.state
	}

	for _, dep := range r.meta.Depends() {
		if depRecord, ok := global.records[dep]; ok {
			depRecord.removeUsedBy(name)
		}
	}
	r.module = nil
	r.instancer = nil
	r.state = NotLoaded
	m.reloadMetadataLocked(r)
	logger.Debug().Str("plugin", name).Msg("plugin unloaded")
	return r.state
}

// Reload unloads and loads a loaded plugin; for an unloaded plugin it
// only re-reads the metadata. The resulting state is returned.
func (m *Manager) Reload(name string) LoadState {
	global.mu.Lock()
	defer global.mu.Unlock()

	r, ok := global.records[name]
	if !ok || !m.owns(r) {
		return NotFound
	}
	if r.state == LoadOk {
		if st := m.unloadLocked(name); st != NotLoaded {
			return st
		}
		return m.loadLocked(name, make(map[string]struct{}))
	}
	m.reloadMetadataLocked(r)
	return r.state
}

// Instantiate constructs a new instance of a loaded plugin through its
// instancer. The instancer is expected to register the instance via
// NewInstance.
func (m *Manager) Instantiate(name string) (any, error) {
	global.mu.Lock()
	r, ok := global.records[name]
	if !ok || !m.owns(r) {
		global.mu.Unlock()
		return nil, fmt.Errorf("plugin %q not found", name)
	}
	if !r.state.Loaded() {
		global.mu.Unlock()
		return nil, fmt.Errorf("plugin %q is not loaded: %s", name, r.state)
	}
	instancer := r.instancer
	global.mu.Unlock()

	if instancer == nil {
		return nil, fmt.Errorf("plugin %q has no instancer", name)
	}
	// The instancer registers through NewInstance, which takes the
	// global lock itself.
	return instancer(m, name), nil
}

// Close destroys the manager's live instance tracking and unloads every
// still-loaded dynamic plugin it owns, dependents before dependencies.
func (m *Manager) Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	for _, r := range global.records {
		if m.owns(r) {
			r.instances = nil
		}
	}

	var errs []error
	for progress := true; progress; {
		progress = false
		for name, r := range global.records {
			if !m.owns(r) || r.state != LoadOk || len(r.usedBy) > 0 {
				continue
			}
			if st := m.unloadLocked(name); st == NotLoaded || st == NotFound {
				progress = true
			} else {
				errs = append(errs, fmt.Errorf("unloading plugin %q: %s", name, st))
			}
		}
	}

	// Whatever is still loaded is kept alive by plugins of another
	// manager; report it rather than forcing the handle closed.
	for name, r := range global.records {
		if m.owns(r) && r.state == LoadOk {
			errs = append(errs, fmt.Errorf("plugin %q still required, not unloaded", name))
		}
	}
	return errors.Join(errs...)
}

func lookupInt(module Module, symbol string) (int, error) {
	sym, err := module.Lookup(symbol)
	if err != nil {
		return 0, err
	}
	switch v := sym.(type) {
	case *int:
		return *v, nil
	case int:
		return v, nil
	}
	return 0, fmt.Errorf("symbol %s has type %T, want *int", symbol, sym)
}

func lookupString(module Module, symbol string) (string, error) {
	sym, err := module.Lookup(symbol)
	if err != nil {
		return "", err
	}
	switch v := sym.(type) {
	case *string:
		return *v, nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("symbol %s has type %T, want *string", symbol, sym)
}

func lookupInstancer(module Module, symbol string) (Instancer, error) {
	sym, err := module.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	switch v := sym.(type) {
	case Instancer:
		return v, nil
	case *Instancer:
		return *v, nil
	case func(*Manager, string) any:
		return v, nil
	}
	return nil, fmt.Errorf("symbol %s has type %T, want plugin.Instancer", symbol, sym)
}
