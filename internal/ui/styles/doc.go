// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colours and lipgloss styles shared by the chat
UI and the CLI.

Colours are lipgloss AdaptiveColor values, so the same palette works on dark
and light terminals. NewTheme picks the background either from configuration
("dark" or "light") or from the terminal ("auto"):

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		// hide the sidebar
	}
*/
package styles
