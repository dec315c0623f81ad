package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/strut/internal/testutil"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "watched.conf", "key=value\n")

	conf := Open(path, 0)
	require.True(t, conf.IsValid())

	events := make(chan fsnotify.Event, 8)
	stop, err := conf.Watch(func(event fsnotify.Event) {
		events <- event
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("key=changed\n"), 0o644))

	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification within timeout")
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "watched.conf", "key=value\n")

	conf := Open(path, 0)
	events := make(chan fsnotify.Event, 8)
	stop, err := conf.Watch(func(event fsnotify.Event) {
		events <- event
	})
	require.NoError(t, err)
	defer stop()

	testutil.WriteFile(t, dir, "other.conf", "key=value\n")

	select {
	case event := <-events:
		t.Fatalf("unexpected notification for %s", event.Name)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatchUnavailable(t *testing.T) {
	inMemory := Parse(strings.NewReader("key=value\n"))
	_, err := inMemory.Watch(nil)
	assert.Error(t, err)

	invalid := Open("/nonexistent/never.conf", ReadOnly)
	_, err = invalid.Watch(nil)
	assert.ErrorIs(t, err, ErrInvalid)
}
