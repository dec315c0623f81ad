package plugin

import (
	"github.com/schmitthub/strut/pkg/config"
)

// Reserved metadata keys read by the manager itself. Everything else in
// a metadata file is free-form and ignored by the core.
const (
	metadataKeyDepends   = "depends"
	metadataKeyReplaces  = "replaces"
	metadataKeyConflicts = "conflicts"
)

// Metadata is the parsed metadata file of one plugin. It wraps a
// read-only Configuration; the reserved keys live in the root group and
// may repeat, one plugin name per occurrence.
type Metadata struct {
	name string
	conf *config.Configuration
}

func newMetadata(name string, conf *config.Configuration) *Metadata {
	return &Metadata{name: name, conf: conf}
}

// Name returns the plugin name the metadata belongs to.
func (m *Metadata) Name() string { return m.name }

// Depends returns the declared dependencies, in declaration order.
func (m *Metadata) Depends() []string {
	return m.conf.Values(metadataKeyDepends)
}

// Replaces returns the plugins this one declares to replace. The
// relation is advisory; the manager does not act on it.
func (m *Metadata) Replaces() []string {
	return m.conf.Values(metadataKeyReplaces)
}

// Conflicts returns the plugins this one declares to conflict with.
// The relation is advisory; the manager does not act on it.
func (m *Metadata) Conflicts() []string {
	return m.conf.Values(metadataKeyConflicts)
}

// Value returns a free-form metadata value such as description or
// author, or "" when absent.
func (m *Metadata) Value(key string) string {
	return m.conf.Value(key)
}

// Configuration returns the backing read-only configuration, for
// plugins that keep their own settings in the metadata file.
func (m *Metadata) Configuration() *config.Configuration {
	return m.conf
}

// Decode maps the metadata file onto out via the configuration engine's
// struct decoding.
func (m *Metadata) Decode(out any) error {
	return m.conf.Decode(out)
}
