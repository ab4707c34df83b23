// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/storage"
)

// exchangeResultMsg carries a finished backend call back to the loop.
type exchangeResultMsg struct {
	Outcome exchange.Outcome
}

// modesLoadedMsg carries the service's mode list, or the error that made
// the fallback list necessary.
type modesLoadedMsg struct {
	Names []string
	Err   error
}

// sessionsChangedMsg reports a write to the sessions key by another client.
type sessionsChangedMsg struct {
	Event storage.Event
}

// authResultMsg carries the result of a login or signup.
type authResultMsg struct {
	User model.User
	Err  error
}

// ModeSource lists the modes the service supports.
type ModeSource interface {
	Modes(ctx context.Context) ([]string, error)
}

// runExchange makes the backend call for p off the loop.
func runExchange(ctx context.Context, p *exchange.Pending) tea.Cmd {
	return func() tea.Msg {
		return exchangeResultMsg{Outcome: p.Run(ctx)}
	}
}

// loadModes fetches the mode list once.
func loadModes(ctx context.Context, src ModeSource) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return modesLoadedMsg{}
		}
		names, err := src.Modes(ctx)
		return modesLoadedMsg{Names: names, Err: err}
	}
}

// waitForSessionEvent blocks until the watcher reports a change. It returns
// nil once the channel is closed, which ends the subscription.
func waitForSessionEvent(events <-chan storage.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionsChangedMsg{Event: ev}
	}
}
