package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/schmitthub/strut/internal/logger"
)

// Watch notifies onChange whenever the backing file is written, created,
// renamed or removed on disk. The watch is placed on the parent
// directory so editors that replace the file atomically are still
// observed. The callback runs on the watcher goroutine; the caller
// decides whether to re-open the file. The returned stop function
// releases the watcher.
//
// Watching an invalid or in-memory configuration is an error.
func (c *Configuration) Watch(onChange func(fsnotify.Event)) (stop func(), err error) {
	if !c.valid {
		return nil, ErrInvalid
	}
	if c.filename == "" {
		return nil, fmt.Errorf("config: watch requires a file-backed configuration")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating watcher: %w", err)
	}

	target := filepath.Clean(c.filename)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("config: watching %s: %w", filepath.Dir(target), err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				onChange(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Str("file", target).Msg("configuration watch error")
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
