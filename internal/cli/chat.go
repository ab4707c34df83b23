// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/reveal"
	"github.com/cerevo/cerevo-tui/internal/ui/render"
	"github.com/cerevo/cerevo-tui/internal/util"
)

// historyFile is kept in the data directory.
const historyFile = "chat_history"

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of input per prompt. io.EOF or
// liner.ErrPromptAborted ends the session.
type LineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// ChatCLI provides input history and line editing for the chat REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor whose history lives at path.
func NewChatCLI(path string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: path}
	if f, err := os.Open(path); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Prompt reads a line and adds it to the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (c *ChatCLI) Close() error {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	return c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is the state of one REPL run.
type ChatSession struct {
	app    *App
	input  LineReader
	mode   model.Mode
	temp   float64
	delay  time.Duration
	reveal bool
	quiet  bool
}

func newChatSession(app *App, args Args, input LineReader) *ChatSession {
	return &ChatSession{
		app:    app,
		input:  input,
		mode:   chatMode(app),
		temp:   app.Config.Chat.Temperature,
		delay:  app.Config.Chat.RevealDelay(),
		reveal: IsStdoutTTY(),
		quiet:  args.Quiet,
	}
}

// HandleChat runs the line-based chat until /quit, Ctrl+C at the prompt or
// end of input.
func HandleChat(ctx context.Context, app *App, args Args) error {
	input := NewChatCLI(filepath.Join(app.Config.DataDir(), historyFile))
	defer input.Close()

	s := newChatSession(app, args, input)
	if id := args.Parser.Flag("session", "s"); id != "" {
		if err := s.open(id); err != nil {
			return err
		}
	}
	return s.Run(ctx)
}

// Run is the read-eval-print loop.
func (s *ChatSession) Run(ctx context.Context) error {
	if !s.quiet {
		s.printWelcome()
	}

	for {
		line, err := s.input.Prompt(fmt.Sprintf("%s> ", s.mode))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.app.Out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			return nil
		case strings.HasPrefix(line, "/"):
			keepGoing, err := s.handleSlash(line)
			if err != nil {
				fmt.Fprintf(s.app.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		s.send(ctx, line)
	}
}

// send runs one exchange. Ctrl+C cancels the request, or skips to the end of
// the reply while it is being revealed.
func (s *ChatSession) send(ctx context.Context, text string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	p, err := s.app.Exchange.Begin(text, s.mode, s.temp)
	if err != nil {
		fmt.Fprintf(s.app.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	out := p.Run(ctx)
	reply := s.app.Exchange.Finish(out)

	if exchange.IsErrorReply(reply) {
		fmt.Fprintln(s.app.Err, ErrorStyle.Render(reply.Content))
		return
	}
	s.printReply(ctx, reply.Content)
	if !s.quiet {
		fmt.Fprintln(s.app.Err, DimStyle.Render(out.Elapsed.Round(10*time.Millisecond).String()))
	}
}

// printReply reveals plain text one character at a time on a terminal.
// JSON is highlighted and printed at once.
func (s *ChatSession) printReply(ctx context.Context, text string) {
	if !s.reveal || s.delay <= 0 || render.IsJSON(text) {
		fmt.Fprintln(s.app.Out, formatReply(text, GetTerminalWidth()))
		return
	}

	r := reveal.Start(text, s.delay)
	printed := 0
	for buf := range r.Seq(ctx) {
		fmt.Fprint(s.app.Out, buf[printed:])
		printed = len(buf)
	}
	if printed < len(text) {
		fmt.Fprint(s.app.Out, text[printed:])
	}
	fmt.Fprintln(s.app.Out)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlash runs a slash command. It returns false when the REPL should
// exit.
func (s *ChatSession) handleSlash(line string) (bool, error) {
	parts := strings.Fields(line)
	cmd, rest := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "/help", "/h", "/?", "/":
		s.printHelp()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/new", "/clear":
		s.app.Exchange.Reset()
		fmt.Fprintln(s.app.Out, SuccessStyle.Render("[New chat]"))

	case "/sessions", "/ls":
		printSessionList(s.app.Out, s.app.Sessions.List())

	case "/open":
		if len(rest) != 1 {
			return true, errors.New("usage: /open <session-id>")
		}
		return true, s.open(rest[0])

	case "/delete":
		if len(rest) != 1 {
			return true, errors.New("usage: /delete <session-id>")
		}
		if err := s.app.Sessions.Delete(rest[0]); err != nil {
			return true, err
		}
		if rest[0] == s.app.Exchange.CurrentSessionID() {
			s.app.Exchange.Reset()
		}
		fmt.Fprintln(s.app.Out, SuccessStyle.Render("[Deleted "+rest[0]+"]"))

	case "/mode", "/m":
		if len(rest) == 0 {
			fmt.Fprintln(s.app.Out, row("Mode", s.mode.String()))
			return true, nil
		}
		s.mode = model.Mode(strings.Join(rest, " "))
		fmt.Fprintln(s.app.Out, row("Mode", s.mode.String()))

	case "/temp", "/t":
		if len(rest) == 0 {
			fmt.Fprintln(s.app.Out, row("Temperature", fmt.Sprintf("%.1f", s.temp)))
			return true, nil
		}
		t, err := strconv.ParseFloat(rest[0], 64)
		if err != nil || t < model.MinTemperature || t > model.MaxTemperature {
			return true, fmt.Errorf("temperature must be a number between %g and %g", model.MinTemperature, model.MaxTemperature)
		}
		s.temp = t
		fmt.Fprintln(s.app.Out, row("Temperature", fmt.Sprintf("%.1f", s.temp)))

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", cmd)
	}
	return true, nil
}

// open makes a saved session the live conversation.
func (s *ChatSession) open(id string) error {
	sess, err := s.app.Sessions.Get(id)
	if err != nil {
		return err
	}
	s.app.Exchange.Open(sess.ID, sess.Messages)
	s.app.Logger.Debug("opened session", zap.String("session", sess.ID))
	if !s.quiet {
		printTranscript(s.app.Out, sess.Messages, GetTerminalWidth())
	}
	fmt.Fprintln(s.app.Out, SuccessStyle.Render("[Opened "+sess.Title+"]"))
	return nil
}

func (s *ChatSession) printWelcome() {
	fmt.Fprintln(s.app.Out, TitleStyle.Render("cerevo chat"))
	fmt.Fprintln(s.app.Out, row("Service", s.app.Client.BaseURL()))
	fmt.Fprintln(s.app.Out, row("Mode", s.mode.String()))
	fmt.Fprintln(s.app.Out, row("Temperature", fmt.Sprintf("%.1f", s.temp)))
	fmt.Fprintln(s.app.Out, DimStyle.Render("Type /help for commands, /quit to leave."))
	fmt.Fprintln(s.app.Out)
}

func (s *ChatSession) printHelp() {
	lines := [][2]string{
		{"/new", "Start a new conversation"},
		{"/sessions", "List saved sessions"},
		{"/open ID", "Continue a saved session"},
		{"/delete ID", "Delete a saved session"},
		{"/mode [NAME]", "Show or change the mode"},
		{"/temp [T]", "Show or change the temperature"},
		{"/quit", "Leave"},
	}
	for _, l := range lines {
		fmt.Fprintln(s.app.Out, LabelStyle.Render(l[0])+DimStyle.Render(l[1]))
	}
}

// printSessionList writes one line per session: ID, date, message count and
// title.
func printSessionList(w io.Writer, list []model.Session) {
	if len(list) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No saved sessions."))
		return
	}
	for _, sess := range list {
		fmt.Fprintf(w, "%s  %s  %3d  %s\n",
			sess.ID,
			DimStyle.Render(sess.CreatedAt.Local().Format("2006-01-02 15:04")),
			sess.MessageCount(),
			util.TruncateRunes(sess.Title, model.MaxTitleLength))
	}
}
