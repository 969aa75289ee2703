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

// inkwelld runs the Inkwell document session service in the foreground
// until interrupted.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/InkwellProject/inkwell-core/pkg/config"
	"github.com/InkwellProject/inkwell-core/pkg/helpers"
	"github.com/InkwellProject/inkwell-core/pkg/service"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	debug := flag.Bool("debug", false, "enable debug logging")
	quiet := flag.Bool("quiet", false, "log to file only, not stderr")
	flag.Parse()

	configDir := filepath.Join(xdg.ConfigHome, "inkwell")
	dataDir := filepath.Join(xdg.DataHome, "inkwell", "documents")
	logDir := filepath.Join(xdg.StateHome, "inkwell")

	var logWriters []io.Writer
	if !*quiet {
		logWriters = append(logWriters, os.Stderr)
	}
	if err := helpers.InitLogging(logDir, logWriters); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	helpers.SetLogLevel(*debug || cfg.DebugLogging())

	svc, err := service.Start(cfg, afero.NewOsFs(), dataDir)
	if err != nil {
		return fmt.Errorf("error starting service: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	svc.Stop()
	return nil
}
