// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk and delivers the
// result on a channel. Model and presentation changes apply to the next
// turn without a restart.
type Watcher struct {
	fsw     *fsnotify.Watcher
	path    string
	updates chan *Config
}

// Watch starts watching path. The containing directory is watched rather
// than the file itself so editors that replace-on-save keep working.
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    path,
		updates: make(chan *Config, 1),
	}
	go w.run()
	return w, nil
}

// Updates delivers each successfully reloaded config. Unparseable edits are
// skipped; the previous config stays in effect.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) run() {
	defer close(w.updates)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFromPath(w.path)
			if err != nil {
				continue
			}
			// Keep only the newest pending update.
			select {
			case <-w.updates:
			default:
			}
			w.updates <- cfg

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
