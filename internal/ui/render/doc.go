// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant replies into terminal output: markdown
// through glamour and code or JSON through chroma. Every function falls back
// to the input text when rendering fails.
package render
