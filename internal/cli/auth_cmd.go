// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/cerevo/cerevo-tui/internal/auth"
)

// WhoamiResult is the --json payload of whoami.
type WhoamiResult struct {
	Email     string `json:"email"`
	Issuer    string `json:"issuer,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	StandIn   bool   `json:"stand_in"`
}

// prompter reads answers from stdin. Secrets are read without echo when
// stdin is a terminal.
type prompter struct {
	in       *bufio.Reader
	out      io.Writer
	terminal *os.File
}

func newPrompter(app *App) *prompter {
	p := &prompter{in: bufio.NewReader(app.In), out: app.Err}
	if app.interactive() {
		p.terminal = app.In.(*os.File)
	}
	return p
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	text, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (p *prompter) secret(prompt string) (string, error) {
	if p.terminal == nil {
		return p.line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(int(p.terminal.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// HandleLogin signs in, or creates an account when signup is set. The email
// may be given with --email; everything else is prompted for.
func HandleLogin(ctx context.Context, app *App, args Args, signup bool) error {
	p := newPrompter(app)

	email := args.Parser.Flag("email", "e")
	if email == "" {
		email = args.Parser.Positional(0)
	}
	var err error
	if email == "" {
		if email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	password, err := p.secret("Password: ")
	if err != nil {
		return err
	}

	cmd := CmdLogin
	if signup {
		confirm, err := p.secret("Confirm password: ")
		if err != nil {
			return err
		}
		cmd = CmdSignup
		_, err = app.Auth.Signup(ctx, email, password, confirm)
		if err != nil {
			return err
		}
	} else if _, err := app.Auth.Login(ctx, email, password); err != nil {
		return err
	}

	if args.JSON {
		return writeJSON(app, cmd, map[string]string{"email": email})
	}
	fmt.Fprintln(app.Out, SuccessStyle.Render("Signed in as "+email))
	return nil
}

// HandleLogout forgets the signed-in user.
func HandleLogout(app *App, args Args) error {
	user, ok := app.Auth.Current()
	app.Auth.Logout()

	if args.JSON {
		return writeJSON(app, CmdLogout, map[string]bool{"logged_out": ok})
	}
	if !args.Quiet {
		if ok {
			fmt.Fprintln(app.Out, SuccessStyle.Render("Logged out "+user.Email))
		} else {
			fmt.Fprintln(app.Out, DimStyle.Render("Nobody was signed in."))
		}
	}
	return nil
}

// HandleWhoami prints the signed-in user and the claims of their token.
func HandleWhoami(app *App, args Args) error {
	user, ok := app.Auth.Current()
	if !ok {
		return errNotLoggedIn
	}

	result := WhoamiResult{Email: user.Email}
	if claims, err := auth.InspectToken(user.Token); err == nil {
		result.Issuer = claims.Issuer
		result.StandIn = claims.StandIn
		if claims.ExpiresAt != nil {
			result.ExpiresAt = claims.ExpiresAt.Time.UTC().Format(time.RFC3339)
		}
	}

	if args.JSON {
		return writeJSON(app, CmdWhoami, result)
	}
	if args.Quiet {
		fmt.Fprintln(app.Out, result.Email)
		return nil
	}
	fmt.Fprintln(app.Out, row("Email", result.Email))
	if result.Issuer != "" {
		fmt.Fprintln(app.Out, row("Issuer", result.Issuer))
	}
	if result.ExpiresAt != "" {
		fmt.Fprintln(app.Out, row("Expires", result.ExpiresAt))
	}
	if result.StandIn {
		fmt.Fprintln(app.Out, DimStyle.Render("Stand-in sign-in: the password was not checked."))
	}
	return nil
}
