// Inkwell Core
// Copyright (c) 2026 The Inkwell Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Inkwell Core.
//
// Inkwell Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Inkwell Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Inkwell Core.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "INKWELL_CFG"
	CfgFile       = "config.toml"
	LogFile       = "core.log"
)

type Values struct {
	Documents    Documents `toml:"documents,omitempty"`
	Autosave     Autosave  `toml:"autosave,omitempty"`
	ConfigSchema int       `toml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging"`
}

type Documents struct {
	// Dir is where document payloads are saved. Empty means the platform
	// data directory chosen at startup.
	Dir string `toml:"dir,omitempty"`
	// LockTimeoutMS bounds how long guard construction waits for a busy
	// document before failing with the retry error.
	LockTimeoutMS int `toml:"lock_timeout_ms,omitempty"`
}

type Autosave struct {
	IntervalSeconds int  `toml:"interval_seconds,omitempty"`
	Enabled         bool `toml:"enabled"`
	// LockTimeoutMS bounds how long the autosave worker waits per document
	// before skipping it until the next sweep.
	LockTimeoutMS int `toml:"lock_timeout_ms,omitempty"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Documents: Documents{
		LockTimeoutMS: 500,
	},
	Autosave: Autosave{
		Enabled:         true,
		IntervalSeconds: 30,
		LockTimeoutMS:   100,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

// DocumentsDir returns the configured documents directory; empty means the
// caller's platform default applies.
func (c *Instance) DocumentsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Documents.Dir
}

func (c *Instance) SetDocumentsDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Documents.Dir = dir
}

// LockTimeout returns how long guard construction may wait for a busy
// document.
func (c *Instance) LockTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Documents.LockTimeoutMS) * time.Millisecond
}

func (c *Instance) AutosaveEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Autosave.Enabled
}

func (c *Instance) AutosaveInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Autosave.IntervalSeconds) * time.Second
}

// AutosaveLockTimeout returns how long the autosave worker waits per
// document before skipping it.
func (c *Instance) AutosaveLockTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Autosave.LockTimeoutMS) * time.Millisecond
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}
