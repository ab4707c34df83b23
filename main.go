// cerevo - a terminal client for the cerevo assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/cli"
	"github.com/cerevo/cerevo-tui/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args := cli.Parse(argv)

	switch cmd {
	case cli.CmdHelp:
		if args.Err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), args.Err)
			return cli.ExitCode(args.Err)
		}
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Config error:"), err)
		return cli.ExitConfigError
	}

	logger, err := logging.New(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Log error:"), err)
		return cli.ExitConfigError
	}
	defer logger.Sync()

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), err)
		return cli.ExitGeneralError
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, app, cmd, args); err != nil {
		logger.Debug("command failed", zap.Stringer("command", cmd), zap.Error(err))
		if args.JSON {
			cli.NewJSONErrorResponse(cmd.String(), err).Write(os.Stdout)
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), err)
		}
		return cli.ExitCode(err)
	}
	return cli.ExitSuccess
}
