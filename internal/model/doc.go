// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - Message: one immutable transcript entry (user or assistant)
//   - Session: a persisted conversation with a derived title
//   - Mode: the operating profile sent to the assistant service
//   - User: the authenticated-user stand-in (email + opaque token)
//
// The JSON shapes match what the client persists under the "chat_sessions"
// and "user" storage keys.
package model
