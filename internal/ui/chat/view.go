// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/ui/render"
	"github.com/cerevo/cerevo-tui/internal/ui/styles"
	"github.com/cerevo/cerevo-tui/internal/util"
)

// View renders the current screen.
func (m Model) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}

	main := m.viewport.View()
	if w := m.sidebarWidth(); w > 0 {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(w), main)
	}

	parts := []string{m.renderHeader(), main}
	if m.focus == focusSettings {
		parts = append(parts, m.renderSettings())
	}
	parts = append(parts, m.renderComposer(), m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewLogin() string {
	form := m.form.view(m.theme, m.width)
	body := lipgloss.PlaceVertical(max(m.height-statusHeight, 1), lipgloss.Center, form)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusWith(formHelp(m.keys)))
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes component sizes for a terminal of width x height.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	bodyHeight := height - headerHeight - composerHeight - statusHeight
	if m.focus == focusSettings {
		bodyHeight -= settingsHeight
	}
	m.viewport.Width = max(width-m.sidebarWidth(), 10)
	m.viewport.Height = max(bodyHeight, 1)
	m.input.Width = max(width-6, 10)
	m.help.Width = width
	if m.md != nil && m.md.Width() != m.viewport.Width-2 {
		m.md.SetWidth(m.viewport.Width - 2)
		clear(m.rendered)
	}
	m.refreshViewport()
}

func (m Model) sidebarWidth() int {
	if !m.showSidebar {
		return 0
	}
	return m.theme.SidebarWidth()
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("cerevo")
	modeStyle := m.theme.HeaderMode
	if m.mode.IsStructured() {
		modeStyle = modeStyle.Foreground(styles.Amber)
	}
	info := fmt.Sprintf("%s  %s",
		modeStyle.Render(m.mode.String()),
		m.theme.HeaderMuted.Render(fmt.Sprintf("temp %.1f", m.temperature)))

	if m.auth != nil {
		if user, ok := m.auth.Current(); ok {
			info += "  " + m.theme.HeaderMuted.Render(user.Email)
		}
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(info) - 2
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + info
	return m.theme.Header.Width(max(m.width, 1)).MaxHeight(headerHeight).Render(line)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(width int) string {
	style := m.theme.Sidebar
	if m.focus == focusSidebar {
		style = m.theme.SidebarFocused
	}
	inner := width - style.GetHorizontalFrameSize()

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Sessions"))
	b.WriteString("\n")

	list := m.sessionList()
	if len(list) == 0 {
		b.WriteString(m.theme.HintText.Render("No saved chats"))
	}
	current := m.exchange.CurrentSessionID()
	for i, s := range list {
		marker := "  "
		if s.ID == current {
			marker = "* "
		}
		title := util.TruncateWidth(marker+s.Title, inner)
		date := s.CreatedAt.Local().Format("Jan 2 15:04")

		row := m.theme.SidebarItem
		if m.focus == focusSidebar && i == m.selected {
			row = m.theme.SidebarSelected
		}
		b.WriteString(row.Width(inner).Render(title))
		b.WriteString("\n")
		b.WriteString(m.theme.SidebarDate.Render("  " + date))
		b.WriteString("\n")
	}

	return style.Width(inner).Height(max(m.viewport.Height, 1)).
		MaxHeight(max(m.viewport.Height, 1)).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport re-renders the transcript and scrolls to the newest
// message.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	msgs := m.exchange.Transcript()
	if len(msgs) == 0 {
		return m.renderEmptyState()
	}

	width := max(m.viewport.Width-2, 10)
	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	if m.exchange.InFlight() {
		blocks = append(blocks, m.theme.HintText.Render("Thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message, width int) string {
	label := m.theme.UserLabel
	if msg.Role == model.RoleAssistant {
		label = m.theme.AssistantLabel
	}
	head := label.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Local().Format("15:04"))

	var body string
	switch {
	case msg.Role == model.RoleUser:
		body = m.theme.UserMessage.Width(width).Render(msg.Content)
	case msg.ID == m.revealID && m.reveal != nil:
		body = lipgloss.NewStyle().Width(width).Render(m.reveal.Buffer())
	case exchange.IsErrorReply(msg):
		body = m.theme.ErrorReply.Width(width).Render(msg.Content)
	default:
		body = m.renderReply(msg)
	}
	return head + "\n" + body
}

// renderReply renders an assistant reply once per width.
func (m Model) renderReply(msg model.Message) string {
	if out, ok := m.rendered[msg.ID]; ok {
		return out
	}
	out := render.Reply(m.md, msg.Content)
	m.rendered[msg.ID] = out
	return out
}

func (m Model) renderEmptyState() string {
	var b strings.Builder
	b.WriteString(m.theme.EmptyTitle.Render("How can I help you today?"))
	b.WriteString("\n")

	chips := make([]string, len(model.QuickModes))
	for i, qm := range model.QuickModes {
		chips[i] = m.theme.QuickMode.Render(fmt.Sprintf("M-%d %s", i+1, qm))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	b.WriteString("\n")
	b.WriteString(m.theme.HintText.Render("tab cycles all modes, C-t opens settings"))
	return b.String()
}

// =============================================================================
// SETTINGS, COMPOSER, STATUS
// =============================================================================

func (m Model) renderSettings() string {
	rows := []string{
		m.theme.SettingsLabel.Render("Mode") + m.theme.SettingsValue.Render(m.mode.String()),
		m.theme.SettingsLabel.Render("Temperature") + m.theme.SettingsValue.Render(fmt.Sprintf("%.1f", m.temperature)) +
			"  " + m.theme.HintText.Render(temperatureBar(m.temperature)),
	}
	return m.theme.SettingsPanel.Render(strings.Join(rows, "\n"))
}

// temperatureBar draws t in [0, 1] as ten cells.
func temperatureBar(t float64) string {
	filled := int(t*10 + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + "]"
}

func (m Model) renderComposer() string {
	var line string
	switch {
	case m.exchange.InFlight():
		line = m.spinner.View() + " " + m.theme.InputDisabled.Render("Waiting for the assistant...")
	case m.focus != focusComposer:
		line = m.theme.InputDisabled.Render(m.input.View())
	default:
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(max(m.width, 1)).Render(line)
}

func (m Model) renderStatus() string {
	var keys help.KeyMap = m.keys
	switch m.focus {
	case focusSidebar:
		keys = sidebarHelp(m.keys)
	case focusSettings:
		keys = settingsHelp(m.keys)
	}
	return m.renderStatusWith(keys)
}

func (m Model) renderStatusWith(keys help.KeyMap) string {
	status := m.theme.StatusText.Render(m.status)
	if m.statusErr {
		status = m.theme.ErrorText.Render(m.status)
	}
	if m.status != "" {
		status += "  "
	}
	return m.theme.StatusBar.Width(max(m.width, 1)).MaxHeight(statusHeight).
		Render(status + m.help.ShortHelpView(keys.ShortHelp()))
}
