// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the durable Session Collection.
//
// The whole collection is kept in memory, newest first, and written back as a
// single JSON array under the "chat_sessions" storage key after every
// mutation. Storage failures never reach the caller: a missing or corrupt
// key loads as an empty collection and a failed write keeps the in-memory
// state. Both are logged at warn level.
//
// # Usage
//
//	store := session.NewStore(kv, logger)
//	s := store.Create(model.SessionTitle(input), msgs)
//	...
//	if err := store.Update(s.ID, msgs); err != nil {
//	    // session was deleted meanwhile
//	}
package session
