// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the aelis configuration.
//
// Settings come from ~/.aelis/config.toml with environment variables taking
// precedence. The API key is deliberately environment-only (AELIS_API_KEY,
// falling back to OPENAI_API_KEY) so it never lands in a config file by
// accident. A missing key is a reportable condition, not an error: the app
// starts and shows setup instructions instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the complete aelis configuration.
type Config struct {
	// Model is the chat model name sent to the endpoint.
	Model string `toml:"model"`
	// BaseURL overrides the API endpoint; empty means the SDK default.
	// Any OpenAI-compatible gateway works.
	BaseURL string `toml:"base_url"`
	// HistoryTokenBudget bounds the conversation context per turn.
	HistoryTokenBudget int `toml:"history_token_budget"`

	Speech SpeechConfig `toml:"speech"`
	UI     UIConfig     `toml:"ui"`

	// APIKey comes from the environment only.
	APIKey string `toml:"-"`
}

// SpeechConfig controls the audio features.
type SpeechConfig struct {
	// Playback enables text-to-speech for [fr] phrases.
	Playback bool `toml:"playback"`
	// Practice enables microphone pronunciation practice.
	Practice bool `toml:"practice"`
}

// UIConfig controls presentation.
type UIConfig struct {
	// ShowTimestamps renders a time next to each message.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:              "gpt-4o-mini",
		HistoryTokenBudget: 6000,
		Speech: SpeechConfig{
			Playback: true,
			Practice: true,
		},
	}
}

// Dir returns the aelis config directory, ~/.aelis.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aelis"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, fills defaults, and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit file location.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// fillDefaults repairs zero values an edited file may have left behind.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.HistoryTokenBudget <= 0 {
		c.HistoryTokenBudget = def.HistoryTokenBudget
	}
}

// ApplyEnvOverrides layers environment variables over file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AELIS_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("AELIS_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("AELIS_API_KEY"); v != "" {
		c.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
}

// IsConfigured reports whether a credential is present.
func (c *Config) IsConfigured() bool {
	return c.APIKey != ""
}

// Save writes the file-backed settings to path, creating the directory as
// needed. The API key is never written.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}
