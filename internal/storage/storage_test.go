// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendsUnderTest returns one fresh instance of every backend.
func backendsUnderTest(t *testing.T) map[string]Backend {
	t.Helper()

	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	sb, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sb.Close() })

	return map[string]Backend{
		"file":   fb,
		"sqlite": sb,
		"memory": NewMemoryBackend(),
	}
}

func TestBackends_GetSetRemove(t *testing.T) {
	for name, kv := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(KeySessions)
			assert.True(t, errors.Is(err, ErrKeyNotFound), "got %v", err)

			require.NoError(t, kv.Set(KeySessions, []byte(`[]`)))
			got, err := kv.Get(KeySessions)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, kv.Set(KeySessions, []byte(`[{"id":"session-1"}]`)))
			got, err = kv.Get(KeySessions)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"session-1"}]`, string(got))

			require.NoError(t, kv.Remove(KeySessions))
			_, err = kv.Get(KeySessions)
			assert.ErrorIs(t, err, ErrKeyNotFound)

			// Removing twice is fine.
			assert.NoError(t, kv.Remove(KeySessions))
		})
	}
}

func TestBackends_KeysAreIndependent(t *testing.T) {
	for name, kv := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Set(KeySessions, []byte("a")))
			require.NoError(t, kv.Set(KeyUser, []byte("b")))
			require.NoError(t, kv.Remove(KeyUser))

			got, err := kv.Get(KeySessions)
			require.NoError(t, err)
			assert.Equal(t, "a", string(got))
		})
	}
}

func TestBackends_RejectInvalidKeys(t *testing.T) {
	for name, kv := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
				err := kv.Set(key, []byte("x"))
				assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestStorageError_KeyedMatchesSentinel(t *testing.T) {
	err := notFound("user")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
	assert.False(t, errors.Is(err, ErrInvalidKey))
	assert.Equal(t, "key not found: user", err.Error())
}

func TestFileBackend_WritesPrivateFile(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fb.Set(KeyUser, []byte(`{"email":"a@b.co"}`)))

	info, err := os.Stat(fb.Path(KeyUser))
	require.NoError(t, err)
	assert.Equal(t, "user.json", info.Name())
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestFileBackend_KeyForPath(t *testing.T) {
	fb := &FileBackend{Dir: "/data"}
	assert.Equal(t, "chat_sessions", fb.keyForPath(filepath.Join("/data", "chat_sessions.json")))
	assert.Equal(t, "", fb.keyForPath(filepath.Join("/data", ".tmp-123")))
	assert.Equal(t, "", fb.keyForPath(filepath.Join("/data", "notes.txt")))
	assert.Equal(t, "", fb.keyForPath(filepath.Join("/other", "user.json")))
}

func TestFileBackend_WatchReportsForeignWritesOnly(t *testing.T) {
	dir := t.TempDir()
	ours, err := NewFileBackend(dir)
	require.NoError(t, err)
	theirs, err := NewFileBackend(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := ours.Watch(ctx, 30*time.Millisecond, KeySessions)
	require.NoError(t, err)

	// Our own write is not reported.
	require.NoError(t, ours.Set(KeySessions, []byte(`[]`)))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event for own write: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}

	// Unwatched keys are not reported either.
	require.NoError(t, theirs.Set(KeyUser, []byte(`{}`)))

	// Another writer's change is.
	require.NoError(t, theirs.Set(KeySessions, []byte(`[{"id":"session-9"}]`)))
	select {
	case ev := <-events:
		assert.Equal(t, Event{Key: KeySessions}, ev)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	cancel()
	for range events {
		// drain until closed
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(KindFile, dir)
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, kv)

	kv, err = Open(KindSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, kv)
	require.NoError(t, kv.Close())
	assert.FileExists(t, filepath.Join(dir, SQLiteFile))

	_, err = Open("redis", dir)
	assert.Error(t, err)
}

func TestSQLiteBackend_Keys(t *testing.T) {
	sb, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer sb.Close()

	require.NoError(t, sb.Set(KeyUser, []byte("u")))
	require.NoError(t, sb.Set(KeySessions, []byte("s")))

	keys, err := sb.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeySessions, KeyUser}, keys)
}
