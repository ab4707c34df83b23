// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings for the chat surface.
type KeyMap struct {
	Send          key.Binding
	NewChat       key.Binding
	ToggleSidebar key.Binding
	Up            key.Binding
	Down          key.Binding
	Open          key.Binding
	Delete        key.Binding
	NextMode      key.Binding
	PrevMode      key.Binding
	QuickMode     key.Binding
	Settings      key.Binding
	TempDown      key.Binding
	TempUp        key.Binding
	Logout        key.Binding
	Quit          key.Binding

	// Login form
	NextField  key.Binding
	PrevField  key.Binding
	SwitchForm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "sessions"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		NextMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next mode"),
		),
		PrevMode: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev mode"),
		),
		QuickMode: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3"),
			key.WithHelp("M-1..3", "quick mode"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "settings"),
		),
		TempDown: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left", "cooler"),
		),
		TempUp: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right", "warmer"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "logout"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "prev field"),
		),
		SwitchForm: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "login/signup"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NewChat, k.ToggleSidebar, k.NextMode, k.Settings, k.Quit}
}

// FullHelp returns all chat bindings, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.NewChat, k.NextMode, k.PrevMode, k.QuickMode},
		{k.ToggleSidebar, k.Up, k.Down, k.Open, k.Delete},
		{k.Settings, k.TempDown, k.TempUp, k.Logout, k.Quit},
	}
}

// sidebarHelp is shown while the sidebar has focus.
type sidebarHelp KeyMap

func (k sidebarHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Delete, k.ToggleSidebar}
}

func (k sidebarHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// settingsHelp is shown while the settings panel is open.
type settingsHelp KeyMap

func (k settingsHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.TempDown, k.TempUp, k.NextMode, k.Settings}
}

func (k settingsHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// formHelp is shown on the login screen.
type formHelp KeyMap

func (k formHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Send, k.SwitchForm, k.Quit}
}

func (k formHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
