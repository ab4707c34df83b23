// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/cerevo/cerevo-tui/internal/auth"
	"github.com/cerevo/cerevo-tui/internal/backend"
	"github.com/cerevo/cerevo-tui/internal/config"
	"github.com/cerevo/cerevo-tui/internal/exchange"
	"github.com/cerevo/cerevo-tui/internal/session"
	"github.com/cerevo/cerevo-tui/internal/storage"
)

// App is the wired client shared by every command.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	KV       storage.Backend
	Sessions *session.Store
	Auth     *auth.Store
	Client   *backend.Client
	Exchange *exchange.Exchange

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// LoadConfig reads the configuration named by --config, or the default
// files, and applies the command-line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(config.ExpandPath(args.ConfigPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.BaseURL != "" {
		cfg.Backend.BaseURL = args.BaseURL
	}
	if args.Mode != "" {
		cfg.Chat.DefaultMode = args.Mode
	}
	if args.HasTemp {
		cfg.Chat.Temperature = args.Temp
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewApp opens storage and builds the session store, the auth store, the
// backend client and the exchange from cfg.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kv, err := storage.Open(cfg.Storage.Backend, cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	issuer, err := auth.NewStandInIssuer()
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("create token issuer: %w", err)
	}

	sessions := session.NewStore(kv, logger)
	client := backend.NewClient(&backend.ClientConfig{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout(),
		UserAgent: "cerevo/" + Version,
		Logger:    logger,
	})

	app := &App{
		Config:   cfg,
		Logger:   logger,
		KV:       kv,
		Sessions: sessions,
		Auth:     auth.NewStore(kv, issuer, logger),
		Client:   client,
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
	}
	app.Exchange = newExchange(app)
	return app, nil
}

func newExchange(a *App) *exchange.Exchange {
	return exchange.New(a.Client, a.Sessions,
		exchange.WithLogger(a.Logger),
		exchange.WithLanguage(a.Config.Chat.ExplainLanguage))
}

// interactive reports whether App.In is a terminal.
func (a *App) interactive() bool {
	f, ok := a.In.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Close releases storage.
func (a *App) Close() error {
	return a.KV.Close()
}
