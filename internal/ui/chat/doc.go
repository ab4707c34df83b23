// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface: a session sidebar, the
// transcript viewport, the composer, the settings panel and a login form.
//
// All Exchange and Session Store mutations happen in Update. The backend
// call runs in a tea.Cmd and comes back as an exchangeResultMsg, which is
// finished on the loop; reply reveals are driven by reveal.TickMsg.
package chat
