// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an atomic rename produces.
const DefaultDebounce = 150 * time.Millisecond

// Event reports that another writer changed a key.
type Event struct {
	Key     string
	Removed bool
}

// Watch reports changes to the given keys that were not made through this
// backend. The returned channel is closed when ctx is done.
//
// The directory is watched rather than the files, because an atomic write
// replaces the file and a file watch would be lost on the first rename.
func (b *FileBackend) Watch(ctx context.Context, debounce time.Duration, keys ...string) (<-chan Event, error) {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return nil, err
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(b.Dir); err != nil {
		watcher.Close()
		return nil, err
	}

	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		wanted[key] = true
	}

	w := &dirWatcher{
		backend:  b,
		watcher:  watcher,
		wanted:   wanted,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		seen:     make(map[string][sha256.Size]byte),
		out:      make(chan Event, len(keys)+1),
	}
	go w.run(ctx)
	return w.out, nil
}

type dirWatcher struct {
	backend  *FileBackend
	watcher  *fsnotify.Watcher
	wanted   map[string]bool
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time          // key -> last raw event
	seen    map[string][sha256.Size]byte // key -> digest last reported

	out chan Event
}

func (w *dirWatcher) run(ctx context.Context) {
	defer close(w.out)
	defer w.watcher.Close()

	tick := w.debounce / 3
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			key := w.backend.keyForPath(event.Name)
			if key == "" || !w.wanted[key] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[key] = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case now := <-ticker.C:
			for _, ev := range w.settle(now) {
				select {
				case w.out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// settle returns events for keys whose last raw event is older than the
// debounce window and whose content differs from what was last seen.
func (w *dirWatcher) settle(now time.Time) []Event {
	w.mu.Lock()
	var ready []string
	for key, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, key)
			delete(w.pending, key)
		}
	}
	w.mu.Unlock()

	var events []Event
	for _, key := range ready {
		data, err := os.ReadFile(w.backend.Path(key))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if _, had := w.seen[key]; had || w.backend.hasWritten(key) {
					delete(w.seen, key)
					events = append(events, Event{Key: key, Removed: true})
				}
			}
			continue
		}
		sum := sha256.Sum256(data)
		if prev, ok := w.seen[key]; ok && prev == sum {
			continue
		}
		w.seen[key] = sum
		if w.backend.ownWrite(key, data) {
			continue
		}
		events = append(events, Event{Key: key})
	}
	return events
}

func (b *FileBackend) hasWritten(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.written[key]
	return ok
}
