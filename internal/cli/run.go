// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/model"
)

// Run executes cmd. Help and version are handled by the caller before the
// app is built.
func Run(ctx context.Context, app *App, cmd Command, args Args) error {
	if args.Err != nil {
		return args.Err
	}
	if args.Parser == nil {
		args.Parser = NewArgParser(nil, boolFlags...)
	}
	app.Logger.Debug("running command", zap.Stringer("command", cmd))

	switch cmd {
	case CmdTUI:
		return HandleTUI(ctx, app, args)
	case CmdAsk:
		return HandleAsk(ctx, app, args)
	case CmdChat:
		return HandleChat(ctx, app, args)
	case CmdSessions:
		return HandleSessions(app, args)
	case CmdLogin:
		return HandleLogin(ctx, app, args, false)
	case CmdSignup:
		return HandleLogin(ctx, app, args, true)
	case CmdLogout:
		return HandleLogout(app, args)
	case CmdWhoami:
		return HandleWhoami(app, args)
	case CmdModes:
		return HandleModes(ctx, app, args)
	case CmdModel:
		return HandleModel(ctx, app, args)
	case CmdRemote:
		return HandleRemote(ctx, app, args)
	case CmdStatus:
		return HandleStatus(ctx, app, args)
	case CmdConfig:
		return HandleConfig(app, args)
	case CmdVersion:
		PrintVersion(app.Out)
		return nil
	case CmdHelp:
		PrintUsage(app.Out)
		return nil
	}
	return NewUsageError(fmt.Sprintf("unknown command %v", cmd))
}

// chatMode returns the mode for ask and chat.
func chatMode(app *App) model.Mode {
	if app.Config.Chat.DefaultMode == "" {
		return model.DefaultMode
	}
	return model.Mode(app.Config.Chat.DefaultMode)
}

// writeJSON prints data in the --json envelope.
func writeJSON(app *App, cmd Command, data interface{}) error {
	return NewJSONResponse(cmd.String(), data).Write(app.Out)
}
