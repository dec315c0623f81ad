package config

import (
	"strings"

	"github.com/schmitthub/strut/internal/logger"
	"github.com/schmitthub/strut/internal/text"
)

// parse builds the group tree from raw file contents. A line that fits
// none of the grammar productions drops the whole enclosing group,
// marks the configuration invalid and stops the parse. That coarse
// policy is deliberately kept for compatibility with existing files and
// their fixtures.
func (c *Configuration) parse(data []byte) {
	c.eol = text.DetectEOL(data)
	lines, terminated := text.SplitLines(data)
	c.finalEOL = terminated

	current := &c.rootGroup
	for lineno, line := range lines {
		switch {
		case text.IsBlank(line):
			current.items = append(current.items, item{kind: itemBlank, raw: line})

		case text.IsComment(line):
			if c.flags&SkipComments != 0 {
				continue
			}
			current.items = append(current.items, item{kind: itemComment, raw: line})

		case strings.HasPrefix(strings.TrimSpace(line), "["):
			group, ok := c.parseHeader(line)
			if !ok {
				c.fail(current, lineno+1, line)
				return
			}
			current = group

		default:
			if !c.parseKeyValue(current, line) {
				c.fail(current, lineno+1, line)
				return
			}
		}
	}
}

// fail drops the enclosing group and marks the configuration invalid.
func (c *Configuration) fail(current *Group, lineno int, line string) {
	logger.Debug().
		Str("file", c.filename).
		Int("line", lineno).
		Str("text", line).
		Msg("unparseable configuration line, dropping enclosing group")

	if current.parent != nil {
		for pos, child := range current.parent.groups {
			if child == current {
				parent := current.parent
				parent.groups = append(parent.groups[:pos], parent.groups[pos+1:]...)
				break
			}
		}
		current.detach()
	} else {
		current.items = nil
		for _, child := range current.groups {
			child.detach()
		}
		current.groups = nil
	}
	c.valid = false
}

// parseHeader resolves a [path] header line to its group. Paths are
// absolute: intermediate components bind to the last existing sibling
// of that name, created on demand; the final component always creates a
// new group, except under UniqueGroups where an existing sibling is
// reused so repeated headers merge.
func (c *Configuration) parseHeader(line string) (*Group, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[len(trimmed)-1] != ']' {
		return nil, false
	}
	path := trimmed[1 : len(trimmed)-1]
	names := strings.Split(path, "/")

	group := &c.rootGroup
	for i, name := range names {
		if name == "" {
			return nil, false
		}
		last := i == len(names)-1
		if !last || c.flags&UniqueGroups != 0 {
			if existing := lastNamed(group, name); existing != nil {
				group = existing
				continue
			}
		}
		child := &Group{name: name, parent: group, conf: c}
		group.groups = append(group.groups, child)
		group = child
	}
	return group, true
}

func lastNamed(g *Group, name string) *Group {
	for i := len(g.groups) - 1; i >= 0; i-- {
		if g.groups[i].name == name {
			return g.groups[i]
		}
	}
	return nil
}

// parseKeyValue attaches a key=value line to the group. The raw line is
// kept verbatim for round-trip output; the stored value has surrounding
// whitespace trimmed unless it was double-quoted.
func (c *Configuration) parseKeyValue(g *Group, line string) bool {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return false
	}
	key := strings.TrimSpace(line[:eq])
	if !validKey(key) {
		return false
	}
	value, _ := text.Unquote(strings.TrimSpace(line[eq+1:]))

	if c.flags&UniqueKeys != 0 {
		for pos := range g.items {
			it := &g.items[pos]
			if it.kind == itemKeyValue && it.key == key {
				it.value = value
				it.raw = line
				return true
			}
		}
	}
	g.items = append(g.items, item{kind: itemKeyValue, key: key, value: value, raw: line})
	return true
}
