// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across cerevo packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: character-counted truncation with ellipsis, counted after NFC
//   - TruncateWidth: terminal-column-aware truncation for the session sidebar
//   - RuneLen: character count after normalization
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TruncateRunes(firstMessage, 50)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
