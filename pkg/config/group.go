package config

import (
	"fmt"
	"strings"
	"unicode"
)

type itemKind uint8

const (
	itemKeyValue itemKind = iota
	itemComment
	itemBlank
)

// item is one line of a group body. Comments and blank lines keep only
// their raw text. Key-value items keep the parsed key and value plus the
// raw source line; raw is cleared when the value is mutated, switching
// the writer to the canonical key=value form.
type item struct {
	kind  itemKind
	key   string
	value string
	raw   string
}

// Group is a named, ordered container of items and child groups. The
// root group of a Configuration is unnamed and has no parent. A Group
// obtained from Clone is detached: it belongs to no Configuration and
// accepts mutations without flag constraints. AddGroupCopy attaches a
// deep copy of it to a configuration; the clone itself stays detached.
type Group struct {
	name   string
	parent *Group
	conf   *Configuration
	items  []item
	groups []*Group
}

// Name returns the group name, empty for the root group.
func (g *Group) Name() string { return g.name }

// Parent returns the parent group, nil for the root group and for
// detached groups.
func (g *Group) Parent() *Group { return g.parent }

// Configuration returns the owning configuration, nil for detached
// groups.
func (g *Group) Configuration() *Configuration { return g.conf }

// fullPath returns the /-joined path from the root, without brackets.
func (g *Group) fullPath() string {
	if g.parent == nil {
		return ""
	}
	parent := g.parent.fullPath()
	if parent == "" {
		return g.name
	}
	return parent + "/" + g.name
}

// mutable returns the error that forbids mutation, or nil. Detached
// groups are always mutable.
func (g *Group) mutable() error {
	if g.conf == nil {
		return nil
	}
	if !g.conf.valid {
		return ErrInvalid
	}
	if g.conf.readOnly() {
		return ErrReadOnly
	}
	return nil
}

func validGroupName(name string) bool {
	return name != "" && !strings.Contains(name, "/")
}

func validKey(key string) bool {
	if key == "" || strings.ContainsAny(key, "/=") {
		return false
	}
	return !strings.ContainsFunc(key, unicode.IsSpace)
}

// uniqueGroups reports whether the UniqueGroups flag applies to this
// group.
func (g *Group) uniqueGroups() bool {
	return g.conf != nil && g.conf.flags&UniqueGroups != 0
}

func (g *Group) uniqueKeys() bool {
	return g.conf != nil && g.conf.flags&UniqueKeys != 0
}

// ---- group access ----

// Groups returns all child groups in order.
func (g *Group) Groups() []*Group {
	out := make([]*Group, len(g.groups))
	copy(out, g.groups)
	return out
}

// GroupsNamed returns all child groups with the given name, in order.
func (g *Group) GroupsNamed(name string) []*Group {
	var out []*Group
	for _, child := range g.groups {
		if child.name == name {
			out = append(out, child)
		}
	}
	return out
}

// GroupCount returns the number of child groups.
func (g *Group) GroupCount() int { return len(g.groups) }

// GroupCountOf returns the number of child groups with the given name.
func (g *Group) GroupCountOf(name string) int {
	count := 0
	for _, child := range g.groups {
		if child.name == name {
			count++
		}
	}
	return count
}

// GroupExists reports whether a child group with the given name exists.
func (g *Group) GroupExists(name string) bool {
	return g.GroupCountOf(name) > 0
}

// Group returns the first child group with the given name, or nil. When
// automatic group creation is enabled on the owning configuration, a
// missing group is created on demand.
func (g *Group) Group(name string) *Group {
	return g.GroupAt(name, 0)
}

// GroupAt returns the index-th child group with the given name, or nil.
// Automatic group creation applies to index 0 only.
func (g *Group) GroupAt(name string, index int) *Group {
	i := 0
	for _, child := range g.groups {
		if child.name != name {
			continue
		}
		if i == index {
			return child
		}
		i++
	}
	if index == 0 && g.conf != nil && g.conf.autoGroups {
		child, err := g.AddGroup(name)
		if err != nil {
			return nil
		}
		return child
	}
	return nil
}

// AddGroup appends a new empty child group.
func (g *Group) AddGroup(name string) (*Group, error) {
	if err := g.mutable(); err != nil {
		return nil, err
	}
	if !validGroupName(name) {
		return nil, ErrInvalidName
	}
	if g.uniqueGroups() && g.GroupExists(name) {
		return nil, fmt.Errorf("config: adding group %q: %w", name, ErrUniqueGroup)
	}
	child := &Group{name: name, parent: g, conf: g.conf}
	g.groups = append(g.groups, child)
	return child, nil
}

// AddGroupCopy appends a deep copy of src as a new child group with the
// given name. src may belong to any configuration or be detached; it is
// left untouched.
func (g *Group) AddGroupCopy(name string, src *Group) (*Group, error) {
	if err := g.mutable(); err != nil {
		return nil, err
	}
	if !validGroupName(name) {
		return nil, ErrInvalidName
	}
	if g.uniqueGroups() && g.GroupExists(name) {
		return nil, fmt.Errorf("config: adding group %q: %w", name, ErrUniqueGroup)
	}
	child := src.copyInto(g.conf)
	child.name = name
	child.parent = g
	g.groups = append(g.groups, child)
	return child, nil
}

// Clone returns a detached deep copy of the group. The copy shares no
// state with the original and accepts mutations freely.
func (g *Group) Clone() *Group {
	return g.copyInto(nil)
}

func (g *Group) copyInto(conf *Configuration) *Group {
	out := &Group{name: g.name, conf: conf}
	out.items = make([]item, len(g.items))
	copy(out.items, g.items)
	out.groups = make([]*Group, len(g.groups))
	for i, child := range g.groups {
		c := child.copyInto(conf)
		c.parent = out
		out.groups[i] = c
	}
	return out
}

// detach severs a removed subtree from its configuration. The whole
// subtree is cleared recursively so that a reference retained into it
// (a grandchild, say) does not observe a stale conf pointer to a live
// configuration it no longer belongs to.
func (g *Group) detach() {
	g.parent = nil
	g.clearConf()
}

func (g *Group) clearConf() {
	g.conf = nil
	for _, child := range g.groups {
		child.clearConf()
	}
}

// RemoveGroup removes the index-th child group with the given name.
func (g *Group) RemoveGroup(name string, index int) error {
	if err := g.mutable(); err != nil {
		return err
	}
	i := 0
	for pos, child := range g.groups {
		if child.name != name {
			continue
		}
		if i == index {
			g.groups = append(g.groups[:pos], g.groups[pos+1:]...)
			child.detach()
			return nil
		}
		i++
	}
	if i == 0 {
		return fmt.Errorf("config: removing group %q: %w", name, ErrNotFound)
	}
	return fmt.Errorf("config: removing group %q at index %d: %w", name, index, ErrIndexOutOfRange)
}

// RemoveAllGroups removes every child group with the given name. It is
// not an error when no such group exists.
func (g *Group) RemoveAllGroups(name string) error {
	if err := g.mutable(); err != nil {
		return err
	}
	kept := g.groups[:0]
	for _, child := range g.groups {
		if child.name == name {
			child.detach()
			continue
		}
		kept = append(kept, child)
	}
	g.groups = kept
	return nil
}

// Clear removes all items and child groups.
func (g *Group) Clear() error {
	if err := g.mutable(); err != nil {
		return err
	}
	g.items = nil
	for _, child := range g.groups {
		child.detach()
	}
	g.groups = nil
	return nil
}

// ---- value access ----

// Value returns the first value stored under key, or "" when the key
// does not exist.
func (g *Group) Value(key string) string {
	v, _ := g.ValueAt(key, 0)
	return v
}

// ValueAt returns the index-th value stored under key.
func (g *Group) ValueAt(key string, index int) (string, bool) {
	i := 0
	for _, it := range g.items {
		if it.kind != itemKeyValue || it.key != key {
			continue
		}
		if i == index {
			return it.value, true
		}
		i++
	}
	return "", false
}

// Values returns all values stored under key, in order.
func (g *Group) Values(key string) []string {
	var out []string
	for _, it := range g.items {
		if it.kind == itemKeyValue && it.key == key {
			out = append(out, it.value)
		}
	}
	return out
}

// KeyExists reports whether at least one value is stored under key.
func (g *Group) KeyExists(key string) bool {
	return g.KeyCount(key) > 0
}

// KeyCount returns the number of values stored under key.
func (g *Group) KeyCount(key string) int {
	count := 0
	for _, it := range g.items {
		if it.kind == itemKeyValue && it.key == key {
			count++
		}
	}
	return count
}

// Keys returns the distinct keys of the group in order of first
// appearance.
func (g *Group) Keys() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, it := range g.items {
		if it.kind != itemKeyValue {
			continue
		}
		if _, ok := seen[it.key]; ok {
			continue
		}
		seen[it.key] = struct{}{}
		out = append(out, it.key)
	}
	return out
}

func validValue(value string) bool {
	return !strings.ContainsAny(value, "\n\r")
}

// AddValue appends a new key-value item.
func (g *Group) AddValue(key, value string) error {
	if err := g.mutable(); err != nil {
		return err
	}
	if !validKey(key) {
		return ErrInvalidName
	}
	if !validValue(value) {
		return ErrInvalidValue
	}
	if g.uniqueKeys() && g.KeyExists(key) {
		return fmt.Errorf("config: adding key %q: %w", key, ErrUniqueKey)
	}
	g.items = append(g.items, item{kind: itemKeyValue, key: key, value: value})
	return nil
}

// SetValue sets the first value stored under key, creating the key when
// it does not exist.
func (g *Group) SetValue(key, value string) error {
	return g.SetValueAt(key, value, 0)
}

// SetValueAt sets the index-th value stored under key. Index 0 creates
// the key when no occurrence exists; any other missing occurrence is an
// error.
func (g *Group) SetValueAt(key, value string, index int) error {
	if err := g.mutable(); err != nil {
		return err
	}
	if !validKey(key) {
		return ErrInvalidName
	}
	if !validValue(value) {
		return ErrInvalidValue
	}
	i := 0
	for pos := range g.items {
		it := &g.items[pos]
		if it.kind != itemKeyValue || it.key != key {
			continue
		}
		if i == index {
			it.value = value
			it.raw = ""
			return nil
		}
		i++
	}
	if index == 0 {
		g.items = append(g.items, item{kind: itemKeyValue, key: key, value: value})
		return nil
	}
	if i == 0 {
		return fmt.Errorf("config: setting key %q: %w", key, ErrNotFound)
	}
	return fmt.Errorf("config: setting key %q at index %d: %w", key, index, ErrIndexOutOfRange)
}

// RemoveValue removes the index-th value stored under key.
func (g *Group) RemoveValue(key string, index int) error {
	if err := g.mutable(); err != nil {
		return err
	}
	i := 0
	for pos, it := range g.items {
		if it.kind != itemKeyValue || it.key != key {
			continue
		}
		if i == index {
			g.items = append(g.items[:pos], g.items[pos+1:]...)
			return nil
		}
		i++
	}
	if i == 0 {
		return fmt.Errorf("config: removing key %q: %w", key, ErrNotFound)
	}
	return fmt.Errorf("config: removing key %q at index %d: %w", key, index, ErrIndexOutOfRange)
}

// RemoveAllValues removes every value stored under key. It is not an
// error when the key does not exist.
func (g *Group) RemoveAllValues(key string) error {
	if err := g.mutable(); err != nil {
		return err
	}
	kept := g.items[:0]
	for _, it := range g.items {
		if it.kind == itemKeyValue && it.key == key {
			continue
		}
		kept = append(kept, it)
	}
	g.items = kept
	return nil
}
