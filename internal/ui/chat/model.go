// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/auth"
	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/reveal"
	"github.com/cerevo/cerevo-tui/internal/session"
	"github.com/cerevo/cerevo-tui/internal/storage"
	"github.com/cerevo/cerevo-tui/internal/ui/render"
	"github.com/cerevo/cerevo-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

type screen int

const (
	screenChat screen = iota
	screenLogin
)

// focus is the part of the chat screen that receives keys.
type focus int

const (
	focusComposer focus = iota
	focusSidebar
	focusSettings
)

const (
	headerHeight   = 1
	composerHeight = 2
	statusHeight   = 1
	settingsHeight = 4
)

// Options wires the chat surface to the rest of the client.
type Options struct {
	Exchange *exchange.Exchange
	Sessions *session.Store

	// Auth gates the chat screen behind the login form. Nil skips it.
	Auth *auth.Store

	// Modes supplies the service's mode list. Nil uses the fallback list.
	Modes ModeSource

	// SessionEvents reports writes to the sessions key by another client.
	SessionEvents <-chan storage.Event

	Theme    *styles.Theme
	Markdown *render.Markdown
	Logger   *zap.Logger

	Mode        model.Mode
	Temperature float64
	RevealDelay time.Duration
	ShowSidebar bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	exchange *exchange.Exchange
	sessions *session.Store
	auth     *auth.Store
	modesSrc ModeSource
	events   <-chan storage.Event
	theme    *styles.Theme
	md       *render.Markdown
	logger   *zap.Logger

	screen screen
	focus  focus
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	form     authForm

	// Settings
	modes       []model.Mode
	mode        model.Mode
	temperature float64
	revealDelay time.Duration

	// Sidebar
	showSidebar bool
	selected    int

	// reveal animates the newest assistant reply; revealID is that
	// message's ID.
	reveal   *reveal.Reveal
	revealID string

	// rendered caches assistant replies by message ID for the current width.
	rendered map[string]string

	status    string
	statusErr bool
}

// New creates the chat model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ThemeAuto)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := opts.Mode
	if mode == "" {
		mode = model.DefaultMode
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 8192
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		ctx:         ctx,
		cancel:      cancel,
		exchange:    opts.Exchange,
		sessions:    opts.Sessions,
		auth:        opts.Auth,
		modesSrc:    opts.Modes,
		events:      opts.SessionEvents,
		theme:       theme,
		md:          opts.Markdown,
		logger:      logger.Named("ui"),
		viewport:    vp,
		input:       ti,
		spinner:     sp,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		form:        newAuthForm(theme),
		modes:       modeList(nil),
		mode:        mode,
		temperature: model.ClampTemperature(opts.Temperature),
		revealDelay: opts.RevealDelay,
		showSidebar: opts.ShowSidebar,
		rendered:    make(map[string]string),
	}
	if m.auth != nil && !m.auth.LoggedIn() {
		m.screen = screenLogin
	}
	m.refreshViewport()
	return m
}

// Init starts the mode fetch and the session watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		loadModes(m.ctx, m.modesSrc),
		waitForSessionEvent(m.events),
	)
}

// Mode returns the selected mode.
func (m Model) Mode() model.Mode {
	return m.mode
}

// Temperature returns the selected temperature.
func (m Model) Temperature() float64 {
	return m.temperature
}

// Close cancels outstanding backend calls.
func (m Model) Close() {
	m.cancel()
}

// =============================================================================
// HELPERS
// =============================================================================

// modeList builds the selectable modes from the service's names, falling
// back to the built-in list when there are none.
func modeList(names []string) []model.Mode {
	if len(names) == 0 {
		names = make([]string, len(model.FallbackModes))
		for i, m := range model.FallbackModes {
			names[i] = m.String()
		}
	}
	return model.ModesFromStrings(names)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}

// revealing reports whether a reply is still being revealed.
func (m *Model) revealing() bool {
	return m.reveal != nil && !m.reveal.Done()
}

// stopReveal cancels a running reveal. The reply itself is already in the
// transcript, so it is shown in full from then on.
func (m *Model) stopReveal() {
	m.reveal.Cancel()
	m.reveal = nil
	m.revealID = ""
}

// resetConversation is "new chat": it drops any reveal and starts an empty,
// unsaved conversation.
func (m *Model) resetConversation() {
	m.stopReveal()
	m.exchange.Reset()
	m.input.Reset()
	m.refreshViewport()
}

// sessionList returns the sidebar rows, newest first.
func (m *Model) sessionList() []model.Session {
	if m.sessions == nil {
		return nil
	}
	return m.sessions.List()
}

func (m *Model) clampSelection() {
	n := 0
	if m.sessions != nil {
		n = m.sessions.Len()
	}
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// composerEnabled reports whether the composer accepts input.
func (m *Model) composerEnabled() bool {
	return m.focus == focusComposer && !m.exchange.InFlight()
}

// syncComposer focuses or blurs the composer to match composerEnabled.
func (m *Model) syncComposer() tea.Cmd {
	if m.composerEnabled() {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}
