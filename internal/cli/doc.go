// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the cerevo command line and runs its commands: the TUI,
// the one-shot ask, the chat REPL, session management, stand-in login, the
// service configuration endpoints and local configuration.
//
// Commands write to App.Out and App.Err so they can be tested against
// buffers. Errors are returned, never printed; main maps them to exit codes
// with ExitCode.
package cli
