// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Default tests the built-in defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, "General", cfg.Chat.DefaultMode)
	assert.Equal(t, 0.7, cfg.Chat.Temperature)
	assert.Equal(t, "python", cfg.Chat.ExplainLanguage)
	assert.Equal(t, 20*time.Millisecond, cfg.Chat.RevealDelay())
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Watch)
	assert.NoError(t, cfg.Validate())
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"bad url scheme", func(c *Config) { c.Backend.BaseURL = "ftp://host" }, "backend.base_url"},
		{"url without host", func(c *Config) { c.Backend.BaseURL = "http://" }, "backend.base_url"},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }, "backend.timeout_secs"},
		{"temperature too high", func(c *Config) { c.Chat.Temperature = 1.5 }, "chat.temperature"},
		{"negative temperature", func(c *Config) { c.Chat.Temperature = -0.1 }, "chat.temperature"},
		{"negative reveal delay", func(c *Config) { c.Chat.RevealDelayMs = -1 }, "chat.reveal_delay_ms"},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"invalid theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Chat.Temperature = 2
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "; ")
}

func TestConfig_ZeroTemperatureIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chat]\ntemperature = 0.0\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Chat.Temperature)
	assert.Equal(t, "General", cfg.Chat.DefaultMode, "unset keys keep defaults")
}

func TestLoadFromPath_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Chat, cfg.Chat)
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend]\nbase_ulr = \"http://x\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_ulr")
}

func TestLoadFromPath_InvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.theme")
}

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "https://cerevo.example"
	cfg.Chat.Temperature = 0.2
	cfg.Storage.Backend = "sqlite"
	cfg.UI.Sidebar = false
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# cerevo configuration file"))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend, loaded.Backend)
	assert.Equal(t, 0.2, loaded.Chat.Temperature)
	assert.Equal(t, "sqlite", loaded.Storage.Backend)
	assert.False(t, loaded.UI.Sidebar)
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.Chat.DefaultMode = "Debugger"
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "Debugger", loaded.Chat.DefaultMode)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env.Options{Environment: map[string]string{
		"CEREVO_API_BASE_URL":    "http://api.internal:9000",
		"CEREVO_MODE":            "Debugger",
		"CEREVO_TEMPERATURE":     "0.1",
		"CEREVO_STORAGE_BACKEND": "sqlite",
		"CEREVO_REVEAL_DELAY_MS": "0",
	}})
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "Debugger", cfg.Chat.DefaultMode)
	assert.Equal(t, 0.1, cfg.Chat.Temperature)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 0, cfg.Chat.RevealDelayMs)

	// Unset variables leave values alone.
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "~/.cerevo", cfg.Storage.DataDir)
}

func TestApplyEnvOverrides_LegacyBaseURL(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.applyEnv(env.Options{Environment: map[string]string{
		"NEXT_PUBLIC_API_BASE_URL": "http://legacy:8000",
	}}))
	assert.Equal(t, "http://legacy:8000", cfg.Backend.BaseURL)

	cfg = Default()
	require.NoError(t, cfg.applyEnv(env.Options{Environment: map[string]string{
		"NEXT_PUBLIC_API_BASE_URL": "http://legacy:8000",
		"CEREVO_API_BASE_URL":      "http://primary:8000",
	}}))
	assert.Equal(t, "http://primary:8000", cfg.Backend.BaseURL)
}

func TestApplyEnvOverrides_BadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env.Options{Environment: map[string]string{
		"CEREVO_TEMPERATURE": "warm",
	}})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CEREVO_TEST_DOTENV=from-file\n"), 0600))
	t.Setenv("CEREVO_TEST_DOTENV", "")
	os.Unsetenv("CEREVO_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CEREVO_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("chat.default_mode")
	require.NoError(t, err)
	assert.Equal(t, "General", val)

	require.NoError(t, cfg.Set("chat.temperature", "0.3"))
	val, _ = cfg.Get("chat.temperature")
	assert.Equal(t, 0.3, val)

	require.NoError(t, cfg.Set("backend.base_url", "http://other:1"))
	assert.Equal(t, "http://other:1", cfg.Backend.BaseURL)

	require.NoError(t, cfg.Set("storage.watch", "false"))
	assert.False(t, cfg.Storage.Watch)

	assert.Error(t, cfg.Set("storage.watch", "maybe"))
	assert.Error(t, cfg.Set("chat.temperature", "hot"))

	_, err = cfg.Get("invalid.key")
	assert.Error(t, err)
	_, err = cfg.Get("chat")
	assert.Error(t, err, "sections are not values")
}

func TestKeysAreResolvable(t *testing.T) {
	cfg := Default()
	for _, key := range Keys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cerevo"), ExpandPath("~/.cerevo"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "~user/x", ExpandPath("~user/x"))
}

func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()
	clone.Chat.DefaultMode = "Debugger"
	assert.Equal(t, "General", original.Chat.DefaultMode)
}
