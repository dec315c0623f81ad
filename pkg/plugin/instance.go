package plugin

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/schmitthub/strut/pkg/config"
)

// Instance is one live instance of a plugin, registered with the
// manager for the duration of its life. Plugins constructed through an
// Instancer embed or hold an Instance so the manager can refuse to
// unload a plugin that is still in use. Close deregisters it.
type Instance struct {
	manager *Manager
	name    string
	id      uuid.UUID

	metadata      *Metadata
	configuration *config.Configuration
}

// NewInstance registers a live instance of a loaded plugin and hands
// back access to the plugin's metadata and configuration, so instances
// can read them cheaply.
func NewInstance(m *Manager, name string) (*Instance, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	r, ok := global.records[name]
	if !ok || !m.owns(r) {
		return nil, fmt.Errorf("plugin %q not found", name)
	}
	if !r.state.Loaded() {
		return nil, fmt.Errorf("plugin %q is not loaded: %s", name, r.state)
	}

	inst := &Instance{
		manager:       m,
		name:          name,
		id:            uuid.New(),
		metadata:      r.meta,
		configuration: r.conf,
	}
	if r.instances == nil {
		r.instances = make(map[uuid.UUID]*Instance)
	}
	r.instances[inst.id] = inst
	return inst, nil
}

// Plugin returns the plugin name the instance belongs to.
func (i *Instance) Plugin() string { return i.name }

// Manager returns the manager the instance is registered with.
func (i *Instance) Manager() *Manager { return i.manager }

// Metadata returns the plugin's metadata.
func (i *Instance) Metadata() *Metadata { return i.metadata }

// Configuration returns the plugin's configuration file.
func (i *Instance) Configuration() *config.Configuration { return i.configuration }

// Close deregisters the instance from the manager. Closing twice is a
// no-op.
func (i *Instance) Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if r, ok := global.records[i.name]; ok {
		delete(r.instances, i.id)
	}
	return nil
}
