// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/reveal"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m, m.handleFormKey(msg)
		}
		return m, m.handleKey(msg)

	case exchangeResultMsg:
		return m, m.handleResult(msg)

	case reveal.TickMsg:
		return m, m.handleRevealTick(msg)

	case spinner.TickMsg:
		if !m.exchange.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case modesLoadedMsg:
		m.modes = modeList(msg.Names)
		if msg.Err != nil {
			m.logger.Warn("using fallback modes", zap.Error(msg.Err))
			m.setError("Could not load modes; using the built-in list")
		}
		return m, nil

	case sessionsChangedMsg:
		if m.sessions != nil && m.sessions.Reload() {
			m.clampSelection()
			m.setStatus("Sessions updated by another client")
		}
		return m, waitForSessionEvent(m.events)

	case authResultMsg:
		return m, m.handleAuthResult(msg)
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	if m.screen == screenLogin {
		cmd = m.form.update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NewChat):
		m.resetConversation()
		m.focus = focusComposer
		m.setStatus("New chat")
		return m.syncComposer()

	case key.Matches(msg, m.keys.ToggleSidebar):
		if m.focus == focusSidebar {
			m.focus = focusComposer
		} else {
			m.focus = focusSidebar
			m.showSidebar = true
			m.clampSelection()
		}
		m.resize(m.width, m.height)
		return m.syncComposer()

	case key.Matches(msg, m.keys.Settings):
		if m.focus == focusSettings {
			m.focus = focusComposer
		} else {
			m.focus = focusSettings
		}
		m.resize(m.width, m.height)
		return m.syncComposer()

	case key.Matches(msg, m.keys.NextMode):
		m.mode = model.NextMode(m.modes, m.mode, 1)
		return nil

	case key.Matches(msg, m.keys.PrevMode):
		m.mode = model.NextMode(m.modes, m.mode, -1)
		return nil

	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusSettings:
		m.handleSettingsKey(msg)
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.QuickMode):
		if len(m.exchange.Transcript()) == 0 {
			m.pickQuickMode(msg.String())
			return nil
		}
	}

	if !m.composerEnabled() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	list := m.sessionList()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(list)-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.Open):
		if m.selected >= len(list) {
			return nil
		}
		m.openSession(list[m.selected])
		m.focus = focusComposer
		if m.exchange.InFlight() {
			// A call for this session is still running.
			return tea.Batch(m.syncComposer(), m.spinner.Tick)
		}
		return m.syncComposer()

	case key.Matches(msg, m.keys.Delete):
		if m.selected >= len(list) {
			return nil
		}
		m.deleteSession(list[m.selected])
	}
	return nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.TempDown):
		m.temperature = model.ClampTemperature(m.temperature - model.TemperatureStep)
	case key.Matches(msg, m.keys.TempUp):
		m.temperature = model.ClampTemperature(m.temperature + model.TemperatureStep)
	}
}

func (m *Model) pickQuickMode(keyName string) {
	var idx int
	if _, err := fmt.Sscanf(keyName, "alt+%d", &idx); err != nil {
		return
	}
	if idx < 1 || idx > len(model.QuickModes) {
		return
	}
	m.mode = model.QuickModes[idx-1]
	m.setStatus("Mode: " + m.mode.String())
}

// =============================================================================
// EXCHANGE
// =============================================================================

func (m *Model) send() tea.Cmd {
	if m.revealing() {
		m.stopReveal()
	}

	p, err := m.exchange.Begin(m.input.Value(), m.mode, m.temperature)
	switch {
	case errors.Is(err, exchange.ErrEmptyInput), errors.Is(err, exchange.ErrInFlight):
		return nil
	case err != nil:
		m.setError(err.Error())
		return nil
	}

	m.input.Reset()
	m.input.Blur()
	m.setStatus("")
	m.refreshViewport()
	return tea.Batch(m.spinner.Tick, runExchange(m.ctx, p))
}

func (m *Model) handleResult(msg exchangeResultMsg) tea.Cmd {
	reply := m.exchange.Finish(msg.Outcome)
	m.clampSelection()

	transcript := m.exchange.Transcript()
	current := len(transcript) > 0 && transcript[len(transcript)-1].ID == reply.ID
	cmd := m.syncComposer()
	if !current {
		// The conversation changed while the request ran.
		m.refreshViewport()
		return cmd
	}

	if exchange.IsErrorReply(reply) {
		m.setError("Request failed")
		m.refreshViewport()
		return cmd
	}

	m.reveal = reveal.Start(reply.Content, m.revealDelay)
	m.revealID = reply.ID
	m.refreshViewport()
	return tea.Batch(cmd, m.reveal.Tick())
}

func (m *Model) handleRevealTick(msg reveal.TickMsg) tea.Cmd {
	if !m.reveal.Owns(msg) {
		return nil
	}
	if _, done := m.reveal.Next(); done {
		m.reveal = nil
		m.revealID = ""
		m.refreshViewport()
		return nil
	}
	m.refreshViewport()
	return m.reveal.Tick()
}

// =============================================================================
// SESSIONS
// =============================================================================

func (m *Model) openSession(s model.Session) {
	m.stopReveal()
	m.exchange.Open(s.ID, s.Messages)
	m.setStatus("Opened " + s.Title)
	m.refreshViewport()
}

func (m *Model) deleteSession(s model.Session) {
	if err := m.sessions.Delete(s.ID); err != nil {
		m.setError(err.Error())
		return
	}
	if s.ID == m.exchange.CurrentSessionID() {
		m.resetConversation()
	}
	m.clampSelection()
	m.setStatus("Deleted " + s.Title)
}

// =============================================================================
// AUTH
// =============================================================================

func (m *Model) logout() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	m.auth.Logout()
	m.resetConversation()
	m.form.reset()
	m.screen = screenLogin
	m.focus = focusComposer
	m.input.Blur()
	m.setStatus("Logged out")
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	if m.form.submitting {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.SwitchForm):
		return m.form.toggle()
	case key.Matches(msg, m.keys.NextField):
		return m.form.focus(m.form.focused + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m.form.focus(m.form.focused - 1)
	case key.Matches(msg, m.keys.Send):
		if m.form.focused < m.form.fieldCount()-1 {
			return m.form.focus(m.form.focused + 1)
		}
		return m.form.submit(m.ctx, m.auth)
	}
	return m.form.update(msg)
}

func (m *Model) handleAuthResult(msg authResultMsg) tea.Cmd {
	m.form.submitting = false
	if msg.Err != nil {
		m.form.err = formMessage(msg.Err)
		return nil
	}
	m.form.reset()
	m.screen = screenChat
	m.focus = focusComposer
	m.setStatus("Signed in as " + msg.User.Email)
	return m.syncComposer()
}
