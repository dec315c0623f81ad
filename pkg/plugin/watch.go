package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/schmitthub/strut/internal/logger"
)

// WatchPluginDirectory rescans the plugin directory whenever a metadata
// file in it appears, changes or vanishes, then invokes onChange (which
// may be nil). The callback runs on the watcher goroutine; callers that
// drive the manager from their own loop should only signal themselves
// from it. The returned stop function releases the watcher.
func (m *Manager) WatchPluginDirectory(onChange func(fsnotify.Event)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("plugin: creating watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("plugin: watching %s: %w", m.dir, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(filepath.Base(event.Name), m.metadataSuffix) {
					continue
				}
				m.ReloadPluginDirectory()
				if onChange != nil {
					onChange(event)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Str("dir", m.dir).Msg("plugin directory watch error")
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		_ = watcher.Close()
	}, nil
}
