package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode maps the group's keys and child groups onto out, which must be
// a pointer to a struct or map. Repeated keys decode as a slice of
// strings, single keys as a string; child groups decode as nested maps
// (repeated siblings as a slice of maps). Scalar conversion is weakly
// typed, so "5" decodes into an int field and "true" into a bool.
// Boolean text follows strconv.ParseBool: words such as "yes" and "on"
// do not decode into a bool field.
func (g *Group) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("config: building decoder: %w", err)
	}
	if err := decoder.Decode(g.asMap()); err != nil {
		return fmt.Errorf("config: decoding group %q: %w", g.name, err)
	}
	return nil
}

func (g *Group) asMap() map[string]any {
	out := make(map[string]any)
	for _, key := range g.Keys() {
		values := g.Values(key)
		if len(values) == 1 {
			out[key] = values[0]
		} else {
			out[key] = values
		}
	}
	seen := make(map[string]struct{})
	for _, child := range g.groups {
		if _, ok := seen[child.name]; ok {
			continue
		}
		seen[child.name] = struct{}{}
		siblings := g.GroupsNamed(child.name)
		if len(siblings) == 1 {
			out[child.name] = child.asMap()
			continue
		}
		maps := make([]map[string]any, len(siblings))
		for i, sibling := range siblings {
			maps[i] = sibling.asMap()
		}
		out[child.name] = maps
	}
	return out
}
