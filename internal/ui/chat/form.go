// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cerevo/cerevo-tui/internal/auth"
	"github.com/cerevo/cerevo-tui/internal/ui/styles"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
)

// authForm is the login and signup screen.
type authForm struct {
	inputs     []textinput.Model
	focused    int
	signup     bool
	submitting bool
	err        string
}

func newAuthForm(theme *styles.Theme) authForm {
	placeholders := []string{"you@example.com", "password", "confirm password"}
	labels := []string{"Email    ", "Password ", "Confirm  "}

	inputs := make([]textinput.Model, len(placeholders))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = labels[i] + " "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 40
		if theme != nil {
			ti.PromptStyle = theme.SettingsLabel.UnsetWidth()
			ti.PlaceholderStyle = theme.InputPlaceholder
		}
		if i != fieldEmail {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		inputs[i] = ti
	}
	inputs[fieldEmail].Focus()

	return authForm{inputs: inputs}
}

// fieldCount is 2 for login and 3 for signup.
func (f *authForm) fieldCount() int {
	if f.signup {
		return 3
	}
	return 2
}

func (f *authForm) focus(i int) tea.Cmd {
	n := f.fieldCount()
	f.focused = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focused {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *authForm) toggle() tea.Cmd {
	f.signup = !f.signup
	f.err = ""
	f.inputs[fieldConfirm].Reset()
	return f.focus(f.focused)
}

func (f *authForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.signup = false
	f.submitting = false
	f.err = ""
	f.focus(fieldEmail)
}

// submit returns the command that signs the user in.
func (f *authForm) submit(ctx context.Context, store *auth.Store) tea.Cmd {
	email := f.inputs[fieldEmail].Value()
	password := f.inputs[fieldPassword].Value()
	confirm := f.inputs[fieldConfirm].Value()
	signup := f.signup

	f.err = ""
	f.submitting = true
	return func() tea.Msg {
		var msg authResultMsg
		if signup {
			msg.User, msg.Err = store.Signup(ctx, email, password, confirm)
		} else {
			msg.User, msg.Err = store.Login(ctx, email, password)
		}
		return msg
	}
}

// formMessage is the text shown under the form for a failed submit.
func formMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrLoginFailed):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrSignupFailed):
		return "Registration failed. Please try again."
	}
	return err.Error()
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f authForm) view(theme *styles.Theme, width int) string {
	title := "Log in to cerevo"
	if f.signup {
		title = "Create a cerevo account"
	}

	var b strings.Builder
	b.WriteString(theme.EmptyTitle.Render(title))
	b.WriteString("\n")
	for i := 0; i < f.fieldCount(); i++ {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(theme.HintText.Render("Signing in..."))
	case f.err != "":
		b.WriteString(theme.ErrorText.Render(f.err))
	default:
		b.WriteString(theme.HintText.Render("Stand-in sign-in: any valid email is accepted."))
	}

	box := theme.SettingsPanel.Render(b.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
