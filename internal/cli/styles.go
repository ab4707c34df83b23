// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/cerevo/cerevo-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// Shared styles for the non-interactive commands.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	UserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.UserAccent)

	AssistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.AssistantAccent)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Rose)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)
)

// row renders a "label value" line.
func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
