// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/session"
	"github.com/cerevo/cerevo-tui/internal/util"
)

// SessionSummary is one row of sessions list --json.
type SessionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	Messages  int    `json:"messages"`
	Preview   string `json:"preview"`
}

func summarize(list []model.Session) []SessionSummary {
	out := make([]SessionSummary, len(list))
	for i, s := range list {
		out[i] = SessionSummary{
			ID:        s.ID,
			Title:     s.Title,
			CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
			Messages:  s.MessageCount(),
			Preview:   s.Preview(80),
		}
	}
	return out
}

// HandleSessions manages the saved sessions.
func HandleSessions(app *App, args Args) error {
	p := args.Parser
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "list", "ls":
		return listSessions(app, args, app.Sessions.List())

	case "search", "find":
		query := strings.Join(p.PositionalFrom(1), " ")
		if query == "" {
			return NewUsageError("usage: cerevo sessions search <query>")
		}
		return listSessions(app, args, app.Sessions.Search(query))

	case "show", "view":
		sess, err := getSession(app, p.Positional(1))
		if err != nil {
			return err
		}
		if args.JSON {
			return writeJSON(app, CmdSessions, sess)
		}
		fmt.Fprintln(app.Out, TitleStyle.Render(sess.Title))
		fmt.Fprintln(app.Out)
		printTranscript(app.Out, sess.Messages, GetTerminalWidth())
		return nil

	case "delete", "rm":
		id := p.Positional(1)
		if id == "" {
			return NewUsageError("usage: cerevo sessions delete <id>")
		}
		if err := app.Sessions.Delete(id); err != nil {
			return err
		}
		if args.JSON {
			return writeJSON(app, CmdSessions, map[string]string{"deleted": id})
		}
		if !args.Quiet {
			fmt.Fprintln(app.Out, SuccessStyle.Render("Deleted "+id))
		}
		return nil

	case "export":
		return exportSession(app, args)

	default:
		return NewUsageError(fmt.Sprintf("unknown sessions subcommand %q (list, show, delete, export, search)", sub))
	}
}

func getSession(app *App, id string) (model.Session, error) {
	if id == "" {
		return model.Session{}, NewUsageError("a session ID is required (see cerevo sessions list)")
	}
	return app.Sessions.Get(id)
}

func listSessions(app *App, args Args, list []model.Session) error {
	if args.JSON {
		return writeJSON(app, CmdSessions, summarize(list))
	}
	if args.Quiet {
		for _, s := range list {
			fmt.Fprintln(app.Out, s.ID)
		}
		return nil
	}
	printSessionList(app.Out, list)
	return nil
}

// exportSession writes a session as Markdown, JSON or HTML to --output or stdout.
func exportSession(app *App, args Args) error {
	p := args.Parser
	sess, err := getSession(app, p.Positional(1))
	if err != nil {
		return err
	}

	var data []byte
	switch format := strings.ToLower(p.FlagOrDefault("format", session.FormatMarkdown)); format {
	case session.FormatMarkdown, "md":
		data = []byte(session.ExportMarkdown(sess))
	case session.FormatJSON:
		data, err = session.ExportJSON(sess)
		if err != nil {
			return NewCommandError("sessions", "export", err)
		}
		data = append(data, '\n')
	case session.FormatHTML, "htm":
		data = []byte(session.ExportHTML(sess))
	default:
		return NewUsageError(fmt.Sprintf("unknown export format %q (markdown, json or html)", format))
	}

	path := p.Flag("output", "o")
	if path == "" {
		_, err := app.Out.Write(data)
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return NewCommandError("sessions", "export", err)
	}
	if !args.Quiet {
		fmt.Fprintln(app.Err, SuccessStyle.Render(fmt.Sprintf("Exported %s to %s", sess.ID, path)))
	}
	return nil
}
