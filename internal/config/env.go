// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// envOverrides lists every environment variable cerevo reads. Fields are
// pre-filled from the loaded config, so a variable that is not set leaves
// the value alone.
type envOverrides struct {
	BaseURL        string  `env:"CEREVO_API_BASE_URL"`
	LegacyBaseURL  string  `env:"NEXT_PUBLIC_API_BASE_URL"`
	Mode           string  `env:"CEREVO_MODE"`
	Temperature    float64 `env:"CEREVO_TEMPERATURE"`
	StorageBackend string  `env:"CEREVO_STORAGE_BACKEND"`
	DataDir        string  `env:"CEREVO_DATA_DIR"`
	LogLevel       string  `env:"CEREVO_LOG_LEVEL"`
	RevealDelayMs  int     `env:"CEREVO_REVEAL_DELAY_MS"`
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// CEREVO_API_BASE_URL takes precedence over NEXT_PUBLIC_API_BASE_URL.
func (c *Config) ApplyEnvOverrides() error {
	return c.applyEnv(env.Options{})
}

func (c *Config) applyEnv(opts env.Options) error {
	o := envOverrides{
		Mode:           c.Chat.DefaultMode,
		Temperature:    c.Chat.Temperature,
		StorageBackend: c.Storage.Backend,
		DataDir:        c.Storage.DataDir,
		LogLevel:       c.Log.Level,
		RevealDelayMs:  c.Chat.RevealDelayMs,
	}
	if err := env.Parse(&o, opts); err != nil {
		return err
	}

	switch {
	case o.BaseURL != "":
		c.Backend.BaseURL = o.BaseURL
	case o.LegacyBaseURL != "":
		c.Backend.BaseURL = o.LegacyBaseURL
	}
	c.Chat.DefaultMode = o.Mode
	c.Chat.Temperature = o.Temperature
	c.Chat.RevealDelayMs = o.RevealDelayMs
	c.Storage.Backend = o.StorageBackend
	c.Storage.DataDir = o.DataDir
	c.Log.Level = o.LogLevel
	return nil
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. Variables already set are not overwritten, and a missing
// file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
