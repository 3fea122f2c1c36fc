package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the global configuration whenever the config file changes.
// onReload is called after each attempt with the reload error, if any. Watch
// blocks until stop is closed.
func Watch(stop <-chan struct{}, onReload func(error)) error {
	cfg := Get()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	configFile := cfg.ConfigFilePath()
	if err := watcher.Add(configFile); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", configFile, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				err := Reload()
				if onReload != nil {
					onReload(err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(err)
			}
		case <-stop:
			return nil
		}
	}
}
