package config

import (
	"github.com/schmitthub/strut/internal/logger"
	"github.com/schmitthub/strut/pkg/confval"
)

// Get returns the first value stored under key converted to T. A
// missing key returns def with ok false — unless automatic key creation
// is enabled on the owning configuration, in which case def is written
// back into the store and ok is true. A value that does not convert
// returns def with ok false.
func Get[T confval.Scalar](g *Group, key string, def T, flags confval.Flags) (T, bool) {
	return GetAt(g, key, 0, def, flags)
}

// GetAt is Get for the index-th occurrence of key. Automatic key
// creation applies to index 0 only.
func GetAt[T confval.Scalar](g *Group, key string, index int, def T, flags confval.Flags) (T, bool) {
	raw, ok := g.ValueAt(key, index)
	if !ok {
		if index == 0 && g.conf != nil && g.conf.autoKeys {
			if err := Add(g, key, def, flags); err == nil {
				return def, true
			}
		}
		return def, false
	}

	value, err := confval.FromString[T](raw, flags)
	if err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("configuration value conversion failed")
		return def, false
	}
	return value, true
}

// GetAll returns every value stored under key converted to T;
// occurrences that do not convert are skipped.
func GetAll[T confval.Scalar](g *Group, key string, flags confval.Flags) []T {
	raws := g.Values(key)
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		value, err := confval.FromString[T](raw, flags)
		if err != nil {
			logger.Debug().Err(err).Str("key", key).Msg("configuration value conversion failed")
			continue
		}
		out = append(out, value)
	}
	return out
}

// Set serializes value according to flags and stores it as the first
// occurrence of key, creating the key when missing.
func Set[T confval.Scalar](g *Group, key string, value T, flags confval.Flags) error {
	return SetAt(g, key, value, 0, flags)
}

// SetAt is Set for the index-th occurrence of key.
func SetAt[T confval.Scalar](g *Group, key string, value T, index int, flags confval.Flags) error {
	s, err := confval.ToString(value, flags)
	if err != nil {
		return err
	}
	return g.SetValueAt(key, s, index)
}

// Add serializes value according to flags and appends it under key.
func Add[T confval.Scalar](g *Group, key string, value T, flags confval.Flags) error {
	s, err := confval.ToString(value, flags)
	if err != nil {
		return err
	}
	return g.AddValue(key, s)
}
