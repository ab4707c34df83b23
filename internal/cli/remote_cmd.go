// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cerevo/cerevo-tui/internal/model"
)

// StatusResult is the --json payload of status.
type StatusResult struct {
	BaseURL   string   `json:"base_url"`
	Reachable bool     `json:"reachable"`
	Message   string   `json:"message,omitempty"`
	Modes     []string `json:"modes,omitempty"`
	LatencyMs int64    `json:"latency_ms"`
	Error     string   `json:"error,omitempty"`
}

// HandleModes lists the service's modes or asks it to switch mode.
func HandleModes(ctx context.Context, app *App, args Args) error {
	p := args.Parser
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "list", "ls":
		names, err := app.Client.Modes(ctx)
		if err != nil {
			return err
		}
		modes := model.ModesFromStrings(names)
		if args.JSON {
			return writeJSON(app, CmdModes, modes)
		}
		current := chatMode(app)
		for _, m := range modes {
			marker := "  "
			if m == current {
				marker = "* "
			}
			fmt.Fprintln(app.Out, marker+m.String())
		}
		return nil

	case "set":
		name := strings.Join(p.PositionalFrom(1), " ")
		if name == "" {
			return NewUsageError("usage: cerevo modes set <name>")
		}
		resp, err := app.Client.SetMode(ctx, name)
		if err != nil {
			return err
		}
		if args.JSON {
			return writeJSON(app, CmdModes, resp)
		}
		fmt.Fprintln(app.Out, SuccessStyle.Render(resp.Message))
		if !args.Quiet && resp.SystemPrompt != "" {
			fmt.Fprintln(app.Out, DimStyle.Render(resp.SystemPrompt))
		}
		return nil

	default:
		return NewUsageError(fmt.Sprintf("unknown modes subcommand %q (list or set)", sub))
	}
}

// HandleModel asks the service to switch model, optionally with --temp.
func HandleModel(ctx context.Context, app *App, args Args) error {
	name := args.Parser.Positional(0)
	if strings.EqualFold(name, "set") {
		name = args.Parser.Positional(1)
	}
	if name == "" {
		return NewUsageError("usage: cerevo model <name> [--temp T]")
	}

	var temp *float64
	if args.HasTemp {
		t := args.Temp
		temp = &t
	}
	resp, err := app.Client.SetModel(ctx, name, temp)
	if err != nil {
		return err
	}
	if args.JSON {
		return writeJSON(app, CmdModel, resp)
	}
	fmt.Fprintln(app.Out, SuccessStyle.Render(resp.Message))
	if !args.Quiet {
		fmt.Fprintln(app.Out, row("Model", resp.Model))
		fmt.Fprintln(app.Out, row("Temperature", fmt.Sprintf("%.1f", resp.Temperature)))
	}
	return nil
}

// HandleRemote reads or deletes a conversation kept by the service.
func HandleRemote(ctx context.Context, app *App, args Args) error {
	p := args.Parser
	sub, id := strings.ToLower(p.Subcommand()), p.Positional(1)
	if id == "" && sub != "" {
		return NewUsageError(fmt.Sprintf("usage: cerevo remote %s <id>", sub))
	}

	switch sub {
	case "get", "show":
		resp, err := app.Client.Conversation(ctx, id)
		if err != nil {
			return err
		}
		if args.JSON {
			return writeJSON(app, CmdRemote, resp)
		}
		if len(resp.Conversation) == 0 {
			fmt.Fprintln(app.Out, DimStyle.Render("The service has no messages for "+id+"."))
			return nil
		}
		for _, m := range resp.Conversation {
			label := UserStyle.Render("You")
			if m.Role == model.RoleAssistant.String() {
				label = AssistantStyle.Render("Assistant")
			}
			fmt.Fprintf(app.Out, "%s\n%s\n\n", label, m.Content)
		}
		return nil

	case "delete", "rm":
		resp, err := app.Client.DeleteConversation(ctx, id)
		if err != nil {
			return err
		}
		if args.JSON {
			return writeJSON(app, CmdRemote, resp)
		}
		fmt.Fprintln(app.Out, SuccessStyle.Render(resp.Message))
		return nil

	default:
		return NewUsageError("usage: cerevo remote get|delete <id>")
	}
}

// HandleStatus checks that the service answers and reports its modes.
func HandleStatus(ctx context.Context, app *App, args Args) error {
	result := StatusResult{BaseURL: app.Client.BaseURL()}

	start := time.Now()
	resp, err := app.Client.Ping(ctx)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err == nil {
		result.Reachable = true
		result.Message = resp.Message
		result.Modes = resp.AvailableModes
	} else {
		result.Error = err.Error()
	}

	if args.JSON {
		if jerr := writeJSON(app, CmdStatus, result); jerr != nil {
			return jerr
		}
		return err
	}

	fmt.Fprintln(app.Out, row("Service", result.BaseURL))
	if err != nil {
		fmt.Fprintln(app.Out, row("Status", ErrorStyle.Render("unreachable")))
		return err
	}
	fmt.Fprintln(app.Out, row("Status", SuccessStyle.Render("ok")))
	fmt.Fprintln(app.Out, row("Latency", fmt.Sprintf("%dms", result.LatencyMs)))
	if result.Message != "" {
		fmt.Fprintln(app.Out, row("Message", result.Message))
	}
	if len(result.Modes) > 0 {
		fmt.Fprintln(app.Out, row("Modes", strings.Join(result.Modes, ", ")))
	}
	if user, ok := app.Auth.Current(); ok {
		fmt.Fprintln(app.Out, row("Signed in", user.Email))
	}
	fmt.Fprintln(app.Out, row("Sessions", fmt.Sprintf("%d saved", app.Sessions.Len())))
	return nil
}
