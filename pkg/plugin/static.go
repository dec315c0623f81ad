package plugin

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/schmitthub/strut/internal/logger"
	"github.com/schmitthub/strut/pkg/config"
)

// Version is the compiled-in plugin manager version. A dynamic module
// built against a different version is rejected with
// WrongPluginVersion; a static registration with a different version is
// rejected at registration time.
const Version = 2

// Instancer constructs instances of a plugin's exported type. The
// returned value is opaque to the manager; implementations are expected
// to register through NewInstance so the instance is tracked.
type Instancer func(m *Manager, name string) any

// record is one entry of the process-wide plugin map. Records are
// created from static registrations or by directory scans and persist
// for the process lifetime, except that a directory rescan drops a
// dynamic record that is not loaded and whose metadata file vanished.
type record struct {
	name  string
	state LoadState

	// iface is known up front for static plugins only; dynamic modules
	// reveal theirs through the SymbolInterface symbol at load.
	iface string

	conf *config.Configuration
	meta *Metadata

	// manager owning this record; nil for static records.
	manager *Manager

	instancer Instancer
	module    Module

	// usedBy holds the names of loaded plugins depending on this one.
	usedBy []string

	instances map[uuid.UUID]*Instance
}

func (r *record) addUsedBy(name string) {
	for _, existing := range r.usedBy {
		if existing == name {
			return
		}
	}
	r.usedBy = append(r.usedBy, name)
}

func (r *record) removeUsedBy(name string) {
	for i, existing := range r.usedBy {
		if existing == name {
			r.usedBy = append(r.usedBy[:i], r.usedBy[i+1:]...)
			return
		}
	}
}

// staticRegistration is a deferred static plugin record, queued until
// the first manager construction drains it into the record map.
type staticRegistration struct {
	name      string
	iface     string
	metadata  string
	instancer Instancer
}

// global is the process-wide plugin state: the record map shared by all
// managers and the static registration queue. The mutex makes static
// registration from package init functions well-defined; managers
// themselves are single-threaded by contract.
var global = struct {
	mu      sync.Mutex
	records map[string]*record
	statics []staticRegistration
	drained bool
}{records: make(map[string]*record)}

// RegisterStatic queues a statically linked plugin for registration.
// The metadata is the plugin's configuration file text. All static
// registrations must complete before the first Manager is constructed;
// a registration arriving later is imported immediately, which is only
// safe while no manager call is in flight.
func RegisterStatic(name string, version int, iface, metadata string, instancer Instancer) {
	if version != Version {
		logger.Warn().
			Str("plugin", name).
			Int("version", version).
			Int("expected", Version).
			Msg("static plugin built against wrong plugin manager version, skipping")
		return
	}

	reg := staticRegistration{name: name, iface: iface, metadata: metadata, instancer: instancer}

	global.mu.Lock()
	defer global.mu.Unlock()
	if global.drained {
		importStaticLocked(reg)
		return
	}
	global.statics = append(global.statics, reg)
}

// drainStaticsLocked merges all queued static registrations into the
// record map. Called once, from the first manager construction.
func drainStaticsLocked() {
	if global.drained {
		return
	}
	global.drained = true
	for _, reg := range global.statics {
		importStaticLocked(reg)
	}
	global.statics = nil
}

func importStaticLocked(reg staticRegistration) {
	if _, exists := global.records[reg.name]; exists {
		logger.Warn().Str("plugin", reg.name).Msg("static plugin name already registered, skipping")
		return
	}
	conf := config.Parse(strings.NewReader(reg.metadata))
	global.records[reg.name] = &record{
		name:      reg.name,
		state:     IsStatic,
		iface:     reg.iface,
		conf:      conf,
		meta:      newMetadata(reg.name, conf),
		instancer: reg.instancer,
	}
	logger.Debug().Str("plugin", reg.name).Str("interface", reg.iface).Msg("static plugin imported")
}
