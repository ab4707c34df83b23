// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/storage"
	"github.com/cerevo/cerevo-tui/internal/ui/chat"
	"github.com/cerevo/cerevo-tui/internal/ui/render"
	"github.com/cerevo/cerevo-tui/internal/ui/styles"
)

// HandleTUI runs the full-screen chat interface until the user quits.
func HandleTUI(ctx context.Context, app *App, args Args) error {
	if !IsTTY() || !IsStdoutTTY() {
		return NewUsageError("the TUI needs a terminal; use 'cerevo ask' or 'cerevo chat' instead")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := chat.New(chat.Options{
		Exchange:      app.Exchange,
		Sessions:      app.Sessions,
		Auth:          app.Auth,
		Modes:         app.Client,
		SessionEvents: watchSessions(ctx, app),
		Theme:         styles.NewTheme(app.Config.UI.Theme),
		Markdown:      render.NewMarkdown("", render.DefaultWidth),
		Logger:        app.Logger,
		Mode:          chatMode(app),
		Temperature:   app.Config.Chat.Temperature,
		RevealDelay:   app.Config.Chat.RevealDelay(),
		ShowSidebar:   app.Config.UI.Sidebar,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// watchSessions reports foreign writes to the session key when the file
// backend is in use and watching is enabled. It returns nil otherwise.
func watchSessions(ctx context.Context, app *App) <-chan storage.Event {
	if !app.Config.Storage.Watch {
		return nil
	}
	fb, ok := app.KV.(*storage.FileBackend)
	if !ok {
		return nil
	}
	events, err := fb.Watch(ctx, storage.DefaultDebounce, app.Sessions.Key())
	if err != nil {
		app.Logger.Warn("session watcher unavailable", zap.Error(err))
		return nil
	}
	return events
}
