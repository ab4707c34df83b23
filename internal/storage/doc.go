// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the client-side key/value store that chat
// sessions and the signed-in user are persisted in.
//
// Values are opaque byte slices, normally JSON documents. Two backends are
// provided:
//
//   - FileBackend: one JSON file per key under a data directory, written
//     atomically. It can watch its files for writes made by another client.
//   - SQLiteBackend: a single-table SQLite database (modernc.org/sqlite, no
//     cgo).
//
// MemoryBackend is an in-process map used by tests and as a fallback when the
// data directory is not writable.
//
// # Usage
//
//	kv, err := storage.Open(storage.KindFile, "~/.cerevo")
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	data, err := kv.Get(storage.KeySessions)
//	if errors.Is(err, storage.ErrKeyNotFound) {
//	    // first run
//	}
package storage
