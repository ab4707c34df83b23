// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the wrap width used before the terminal size is known.
const DefaultWidth = 80

// MinWidth is the narrowest wrap width the renderer will use.
const MinWidth = 20

// Markdown renders markdown at a fixed wrap width. The underlying glamour
// renderer is rebuilt only when the width or style changes. It is safe for
// concurrent use.
type Markdown struct {
	mu       sync.Mutex
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer. style is a glamour standard style name
// ("dark", "light", "notty"); "" or "auto" detects it from the terminal.
func NewMarkdown(style string, width int) *Markdown {
	m := &Markdown{style: style}
	m.SetWidth(width)
	return m
}

// Width returns the current wrap width.
func (m *Markdown) Width() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width
}

// SetWidth changes the wrap width.
func (m *Markdown) SetWidth(width int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinWidth {
		width = MinWidth
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if width == m.width && m.renderer != nil {
		return
	}
	m.width = width
	m.renderer = m.build()
}

// build must be called with mu held. A nil result means plain output.
func (m *Markdown) build() *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if m.style != "" && m.style != "auto" {
		styleOpt = glamour.WithStandardStyle(m.style)
	}
	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(m.width),
	)
	if err != nil {
		return nil
	}
	return r
}

// Render renders content, trimming the blank lines glamour puts around the
// document. It returns content unchanged if rendering fails.
func (m *Markdown) Render(content string) string {
	if strings.TrimSpace(content) == "" {
		return content
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
