// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cerevo/cerevo-tui/internal/config"
)

// HandleConfig shows and edits the configuration file.
func HandleConfig(app *App, args Args) error {
	p := args.Parser
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "show":
		if args.JSON {
			return writeJSON(app, CmdConfig, app.Config)
		}
		fmt.Fprint(app.Out, app.Config.String())
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return NewUsageError("usage: cerevo config get <key>")
		}
		val, err := app.Config.Get(key)
		if err != nil {
			return configKeyError(err)
		}
		if args.JSON {
			return writeJSON(app, CmdConfig, map[string]interface{}{key: val})
		}
		fmt.Fprintln(app.Out, val)
		return nil

	case "set":
		key, value := p.Positional(1), strings.Join(p.PositionalFrom(2), " ")
		if key == "" || p.PositionalCount() < 3 {
			return NewUsageError("usage: cerevo config set <key> <value>")
		}
		return setConfig(app, args, key, value)

	case "path":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.Out, path)
		return nil

	case "keys":
		keys := config.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(app.Out, k)
		}
		return nil

	default:
		return NewUsageError(fmt.Sprintf("unknown config subcommand %q (show, get, set, path, keys)", sub))
	}
}

// setConfig changes one key, validates the result and saves it. Command-line
// overrides are not written back: the file is reloaded before the change.
func setConfig(app *App, args Args, key, value string) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return configKeyError(err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch {
	case strings.HasSuffix(path, ".json"):
		err = config.SaveJSON(cfg, path)
	case args.ConfigPath == "":
		err = config.Save(cfg)
	default:
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return NewCommandError("config", "save", err)
	}

	if args.JSON {
		got, _ := cfg.Get(key)
		return writeJSON(app, CmdConfig, map[string]interface{}{key: got})
	}
	if !args.Quiet {
		fmt.Fprintln(app.Out, SuccessStyle.Render(fmt.Sprintf("Set %s = %s", key, value)))
	}
	return nil
}

// configPath is --config, or the default file that Load would read: TOML,
// then JSON, then TOML again for a new file.
func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return config.ExpandPath(args.ConfigPath), nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

func configKeyError(err error) error {
	return NewUsageError(fmt.Sprintf("%v (see cerevo config keys)", err))
}
