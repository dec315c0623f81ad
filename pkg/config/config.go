package config

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/schmitthub/strut/internal/logger"
	"github.com/schmitthub/strut/internal/text"
)

// Flags control parsing and serialization behavior of a Configuration.
type Flags uint16

const (
	// ReadOnly opens the file for reading only; every mutator and Save
	// fail. Opening a missing file with ReadOnly yields an invalid
	// configuration.
	ReadOnly Flags = 1 << iota

	// Truncate discards the file contents at open.
	Truncate

	// UniqueGroups collapses repeated sibling groups of the same name
	// into the first occurrence at parse time and forbids adding
	// duplicates.
	UniqueGroups

	// UniqueKeys makes a repeated key replace the previous occurrence
	// at parse time and forbids adding duplicates.
	UniqueKeys

	// SkipComments drops comment lines at parse time.
	SkipComments

	// ForceUnixEOL writes \n line terminators regardless of the
	// detected style.
	ForceUnixEOL

	// ForceWindowsEOL writes \r\n line terminators regardless of the
	// detected style.
	ForceWindowsEOL
)

// rootGroup lets Configuration embed the root Group without the field
// shadowing the promoted Group method.
type rootGroup = Group

// Configuration is the root of a parsed configuration tree bound to a
// file path or to a read-only in-memory source. The root Group is
// embedded, so group and value operations apply directly.
//
// A Configuration is not safe for concurrent use; callers requiring
// concurrency must serialize access externally.
type Configuration struct {
	rootGroup

	filename string
	flags    Flags
	eol      string
	finalEOL bool
	valid    bool
	inMemory bool

	autoGroups bool
	autoKeys   bool
}

// Open parses the configuration file at path. It never returns an
// error: a missing file yields a valid empty configuration that will be
// created on Save, while an unreadable file (or a missing file combined
// with ReadOnly) yields an invalid configuration on which every query
// is empty and every mutation fails.
func Open(path string, flags Flags) *Configuration {
	c := newConfiguration(flags)
	c.filename = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && flags&ReadOnly == 0 {
			return c
		}
		logger.Debug().Err(err).Str("file", path).Msg("cannot read configuration")
		c.valid = false
		return c
	}
	if flags&Truncate != 0 {
		return c
	}
	c.parse(data)
	return c
}

// Parse reads a configuration from an in-memory source. The result is
// permanently read-only; Save always fails.
func Parse(r io.Reader) *Configuration {
	c := newConfiguration(0)
	c.inMemory = true

	data, err := io.ReadAll(r)
	if err != nil {
		logger.Debug().Err(err).Msg("cannot read configuration source")
		c.valid = false
		return c
	}
	c.parse(data)
	return c
}

func newConfiguration(flags Flags) *Configuration {
	c := &Configuration{flags: flags, valid: true, finalEOL: true}
	c.rootGroup.conf = c
	return c
}

// IsValid reports whether the configuration opened and parsed cleanly.
// An invalid configuration stays queryable for whatever was parsed
// before the failure but rejects every mutation.
func (c *Configuration) IsValid() bool { return c.valid }

// Filename returns the backing file path, empty for in-memory sources.
func (c *Configuration) Filename() string { return c.filename }

func (c *Configuration) readOnly() bool {
	return c.inMemory || c.flags&ReadOnly != 0
}

// SetAutomaticGroupCreation toggles materialization of missing groups
// on lookup.
func (c *Configuration) SetAutomaticGroupCreation(enabled bool) { c.autoGroups = enabled }

// AutomaticGroupCreation reports whether missing groups are created on
// lookup.
func (c *Configuration) AutomaticGroupCreation() bool { return c.autoGroups }

// SetAutomaticKeyCreation toggles materialization of missing keys on
// typed lookup: the caller-supplied default is written back into the
// store.
func (c *Configuration) SetAutomaticKeyCreation(enabled bool) { c.autoKeys = enabled }

// AutomaticKeyCreation reports whether missing keys are created on
// typed lookup.
func (c *Configuration) AutomaticKeyCreation() bool { return c.autoKeys }

// eolStyle resolves the line terminator used on save: a forcing flag
// wins, then the style detected at parse, then \n.
func (c *Configuration) eolStyle() string {
	switch {
	case c.flags&ForceUnixEOL != 0:
		return text.UnixEOL
	case c.flags&ForceWindowsEOL != 0:
		return text.WindowsEOL
	case c.eol != "":
		return c.eol
	}
	return text.UnixEOL
}
