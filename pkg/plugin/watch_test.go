package plugin

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchPluginDirectory(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, dir, newFakeLoader())
	require.Empty(t, m.PluginList())

	events := make(chan fsnotify.Event, 8)
	stop, err := m.WatchPluginDirectory(func(event fsnotify.Event) {
		events <- event
	})
	require.NoError(t, err)
	defer stop()

	writePlugin(t, dir, "appeared", "")

	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no directory notification within timeout")
	}
	assert.Contains(t, m.PluginList(), "appeared")
}

func TestWatchPluginDirectoryMissing(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)
	m := NewManager(testInterface, "/nonexistent/plugins", WithLoader(newFakeLoader()))

	_, err := m.WatchPluginDirectory(nil)
	assert.Error(t, err)
}
