// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/ui/render"
)

// AskResult is the --json payload of ask.
type AskResult struct {
	Reply     string `json:"reply"`
	Mode      string `json:"mode"`
	SessionID string `json:"session_id"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// HandleAsk sends one message and prints the reply. The question comes from
// the arguments or, when there are none, from piped stdin. --session
// continues a saved session instead of starting a new one.
func HandleAsk(ctx context.Context, app *App, args Args) error {
	question := strings.Join(args.Parser.PositionalFrom(0), " ")
	if strings.TrimSpace(question) == "" && app.In != nil && !app.interactive() {
		data, err := io.ReadAll(app.In)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if strings.TrimSpace(question) == "" {
		return NewUsageError("ask needs a question, e.g. cerevo ask \"what is a goroutine?\"")
	}

	if id := args.Parser.Flag("session", "s"); id != "" {
		msgs, err := app.Sessions.Messages(id)
		if err != nil {
			return NewCommandError("ask", "open session "+id, err)
		}
		app.Exchange.Open(id, msgs)
	}

	mode := chatMode(app)
	p, err := app.Exchange.Begin(question, mode, app.Config.Chat.Temperature)
	if err != nil {
		return err
	}
	out := p.Run(ctx)
	reply := app.Exchange.Finish(out)

	if args.JSON {
		if out.Err != nil {
			return out.Err
		}
		return writeJSON(app, CmdAsk, AskResult{
			Reply:     reply.Content,
			Mode:      mode.String(),
			SessionID: app.Exchange.CurrentSessionID(),
			ElapsedMs: out.Elapsed.Milliseconds(),
		})
	}

	if out.Err != nil {
		fmt.Fprintln(app.Err, ErrorStyle.Render(reply.Content))
		return out.Err
	}

	fmt.Fprintln(app.Out, formatReply(reply.Content, GetTerminalWidth()))
	if !args.Quiet {
		fmt.Fprintln(app.Err, DimStyle.Render(fmt.Sprintf("%s  %s  %s",
			mode, out.Elapsed.Round(10*time.Millisecond), app.Exchange.CurrentSessionID())))
	}
	return nil
}

// formatReply renders a reply for stdout: Markdown and highlighted JSON on
// a color terminal, the text unchanged otherwise.
func formatReply(text string, width int) string {
	if !ColorsEnabled() {
		return text
	}
	return render.Reply(render.NewMarkdown("", width-2), text)
}

// printTranscript writes msgs with a label line per message.
func printTranscript(w io.Writer, msgs []model.Message, width int) {
	for i, msg := range msgs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		label := UserStyle
		if msg.Role == model.RoleAssistant {
			label = AssistantStyle
		}
		fmt.Fprintf(w, "%s %s\n", label.Render(msg.Role.DisplayName()),
			DimStyle.Render(msg.Timestamp.Local().Format("2006-01-02 15:04")))

		switch {
		case msg.Role == model.RoleUser:
			fmt.Fprintln(w, msg.Content)
		case exchange.IsErrorReply(msg):
			fmt.Fprintln(w, ErrorStyle.Render(msg.Content))
		default:
			fmt.Fprintln(w, formatReply(msg.Content, width))
		}
	}
}
