// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cerevo/cerevo-tui/internal/util"
)

// fileExt is appended to every key to form its file name.
const fileExt = ".json"

// FileBackend stores each key in its own file under Dir.
type FileBackend struct {
	// Dir holds one <key>.json file per key.
	// Default: ~/.cerevo/
	Dir string

	mu      sync.Mutex
	written map[string][sha256.Size]byte // key -> digest of our last write
}

// NewFileBackend creates a file backend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("storage directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileBackend{
		Dir:     dir,
		written: make(map[string][sha256.Size]byte),
	}, nil
}

// Path returns the file that holds key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.Dir, key+fileExt)
}

// Get implements Backend.
func (b *FileBackend) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set implements Backend. The write is atomic: readers see either the old or
// the new value, never a partial file.
func (b *FileBackend) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := util.AtomicWriteFile(b.Path(key), value, 0600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	b.mu.Lock()
	b.written[key] = sha256.Sum256(value)
	b.mu.Unlock()
	return nil
}

// Remove implements Backend.
func (b *FileBackend) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := os.Remove(b.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	b.mu.Lock()
	delete(b.written, key)
	b.mu.Unlock()
	return nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}

// ownWrite reports whether data is exactly what this backend last wrote
// under key.
func (b *FileBackend) ownWrite(key string, data []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	sum, ok := b.written[key]
	return ok && sum == sha256.Sum256(data)
}

// keyForPath maps a file in Dir back to its key, or "" for temp files and
// anything else that is not a stored value.
func (b *FileBackend) keyForPath(path string) string {
	if filepath.Dir(path) != filepath.Clean(b.Dir) {
		return ""
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return ""
	}
	return strings.TrimSuffix(name, fileExt)
}
