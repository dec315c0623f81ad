package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/schmitthub/strut/internal/text"
)

// Save serializes the tree back to the backing file. It fails on
// invalid and read-only configurations. The write is atomic: data goes
// to a temp file in the target directory which is fsynced and renamed
// over the target, under an advisory lock, so a crash mid-save never
// leaves a partial file visible.
func (c *Configuration) Save() error {
	if !c.valid {
		return ErrInvalid
	}
	if c.readOnly() {
		return ErrReadOnly
	}

	data := c.serialize()
	return withFileLock(c.filename, func() error {
		return atomicWriteFile(c.filename, data, 0o644)
	})
}

// SaveTo serializes the tree to w. Unlike Save it works on read-only
// and in-memory configurations; only invalid ones are rejected.
func (c *Configuration) SaveTo(w io.Writer) error {
	if !c.valid {
		return ErrInvalid
	}
	_, err := w.Write(c.serialize())
	return err
}

// serialize renders the whole tree. Untouched lines are emitted
// verbatim from their raw text; mutated or added key-value items are
// rendered canonically. Group headers are regenerated from the tree.
// Every line gets one terminator; when the source lacked a final
// terminator the last one is stripped again so unmodified files
// round-trip byte for byte.
func (c *Configuration) serialize() []byte {
	eol := c.eolStyle()
	var buf bytes.Buffer
	writeGroup(&buf, &c.rootGroup, eol)

	out := buf.Bytes()
	if !c.finalEOL && len(out) >= len(eol) {
		out = out[:len(out)-len(eol)]
	}
	return out
}

func writeGroup(buf *bytes.Buffer, g *Group, eol string) {
	// Groups with no items of their own that only carry children are
	// the intermediates materialized by a nested [a/b] header; their
	// header is implied by the children's paths and is not written.
	if g.parent != nil && (len(g.items) > 0 || len(g.groups) == 0) {
		buf.WriteString("[")
		buf.WriteString(g.fullPath())
		buf.WriteString("]")
		buf.WriteString(eol)
	}
	for _, it := range g.items {
		if it.kind == itemKeyValue && it.raw == "" {
			buf.WriteString(it.key)
			buf.WriteString("=")
			if text.NeedsQuoting(it.value) {
				buf.WriteString(text.Quote(it.value))
			} else {
				buf.WriteString(it.value)
			}
		} else {
			buf.WriteString(it.raw)
		}
		buf.WriteString(eol)
	}
	for _, child := range g.groups {
		writeGroup(buf, child, eol)
	}
}

// atomicWriteFile writes data to path using a temp-file + fsync +
// rename strategy. The temp file is created in the target's parent
// directory to guarantee same-filesystem rename semantics on POSIX.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".strut-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("setting permissions on temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}

// withFileLock acquires an advisory file lock on path+".lock" before
// running fn, so two processes saving the same file do not interleave
// their temp-file renames.
func withFileLock(path string, fn func() error) error {
	fl := flock.New(path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring file lock for %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring file lock for %s", path)
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}
