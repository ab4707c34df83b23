// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents a CLI command.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdModes
	CmdModel
	CmdRemote
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:      "tui",
	CmdAsk:      "ask",
	CmdChat:     "chat",
	CmdSessions: "sessions",
	CmdLogin:    "login",
	CmdSignup:   "signup",
	CmdLogout:   "logout",
	CmdWhoami:   "whoami",
	CmdModes:    "modes",
	CmdModel:    "model",
	CmdRemote:   "remote",
	CmdStatus:   "status",
	CmdConfig:   "config",
	CmdVersion:  "version",
	CmdHelp:     "help",
}

// String returns the command word.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds the parsed command line.
type Args struct {
	// Global flags
	ConfigPath string  // --config
	BaseURL    string  // --url
	JSON       bool    // --json
	Quiet      bool    // -q, --quiet
	Verbose    bool    // -v, --verbose
	Mode       string  // -m, --mode
	Temp       float64 // --temp
	HasTemp    bool

	// Parser holds the command's own arguments, without the command word.
	Parser *ArgParser

	// Err is set when the command line could not be parsed.
	Err error
}

// boolFlags never take a value.
var boolFlags = []string{"json", "q", "quiet", "v", "verbose", "h", "help", "force", "f"}

const usageText = `cerevo - terminal client for the cerevo assistant

USAGE:
  cerevo [flags]                      Start the interactive TUI
  cerevo <command> [args] [flags]

COMMANDS:
  ask <question>                      Send one message and print the reply
  chat [--session ID]                 Line-based chat with history
  sessions list                       List saved sessions, newest first
  sessions show <id>                  Print a session's transcript
  sessions delete <id>                Delete a session
  sessions export <id> [--format markdown|json|html] [--output FILE]
  sessions search <query>             Find sessions by title or content
  login [--email EMAIL]               Sign in (stand-in: any valid email works)
  signup [--email EMAIL]              Create an account
  logout                              Forget the signed-in user
  whoami                              Show the signed-in user
  modes [list]                        List the service's modes
  modes set <name>                    Ask the service to switch mode
  model <name> [--temp T]             Ask the service to switch model
  remote get <id>                     Fetch a conversation the service keeps
  remote delete <id>                  Delete a conversation the service keeps
  status                              Check that the service is reachable
  config [show]                       Print the effective configuration
  config get <key>                    Print one setting
  config set <key> <value>            Change one setting and save it
  config path                         Print the config file path
  version                             Print version information

FLAGS:
  --config FILE       Use FILE instead of ~/.cerevo/config.toml
  --url URL           Assistant service base URL
  -m, --mode MODE     Mode for ask and chat
  --temp T            Temperature for ask and chat, 0 to 1
  --json              Machine-readable output
  -q, --quiet         Print only the essential result
  -v, --verbose       Debug logging
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "cerevo %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildDate)
}

// Parse parses argv, which excludes the program name.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	cmd := CmdTUI
	if len(remaining) > 0 {
		var ok bool
		cmd, ok = lookupCommand(strings.ToLower(remaining[0]))
		if !ok {
			args.Err = NewUsageError(fmt.Sprintf("unknown command %q (see cerevo help)", remaining[0]))
			return CmdHelp, args
		}
		remaining = remaining[1:]
	}

	args.Parser = NewArgParser(remaining, boolFlags...)
	if args.Parser.BoolFlag("h", "help") {
		return CmdHelp, args
	}
	return cmd, args
}

func lookupCommand(word string) (Command, bool) {
	switch word {
	case "tui":
		return CmdTUI, true
	case "ask":
		return CmdAsk, true
	case "chat":
		return CmdChat, true
	case "session", "sessions":
		return CmdSessions, true
	case "login":
		return CmdLogin, true
	case "signup", "register":
		return CmdSignup, true
	case "logout":
		return CmdLogout, true
	case "whoami":
		return CmdWhoami, true
	case "mode", "modes":
		return CmdModes, true
	case "model":
		return CmdModel, true
	case "remote":
		return CmdRemote, true
	case "status", "s":
		return CmdStatus, true
	case "config":
		return CmdConfig, true
	case "version", "--version":
		return CmdVersion, true
	case "help", "--help", "-h":
		return CmdHelp, true
	}
	return CmdHelp, false
}

// parseGlobalFlags extracts the flags every command accepts, wherever they
// appear, and returns the rest in order.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	value := func(i *int, name string) string {
		if *i+1 >= len(argv) {
			args.Err = NewUsageError(fmt.Sprintf("flag %s needs a value", name))
			return ""
		}
		*i++
		return argv[*i]
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		name, inline, hasInline := strings.Cut(arg, "=")

		var val string
		takes := func() string {
			if hasInline {
				return inline
			}
			return value(&i, name)
		}

		switch name {
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--config":
			args.ConfigPath = takes()
		case "--url":
			args.BaseURL = takes()
		case "-m", "--mode":
			args.Mode = takes()
		case "--temp", "--temperature":
			val = takes()
			t, err := strconv.ParseFloat(val, 64)
			if err != nil {
				args.Err = NewUsageError(fmt.Sprintf("invalid temperature %q", val))
				continue
			}
			args.Temp, args.HasTemp = t, true
		case "--":
			remaining = append(remaining, argv[i:]...)
			return remaining, args
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
