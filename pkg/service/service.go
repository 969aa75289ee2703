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

// Package service runs the document session: the workshop that owns open
// documents, the broker that fans out their lifecycle events, and the
// background autosave worker.
package service

import (
	"context"
	"errors"

	"github.com/InkwellProject/inkwell-core/pkg/config"
	"github.com/InkwellProject/inkwell-core/pkg/service/broker"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Service ties the workshop, broker and workers together for one running
// session.
type Service struct {
	cfg       *config.Instance
	ws        *Workshop
	broker    *broker.Broker
	autosaver *Autosaver
	cancel    context.CancelFunc
	group     *errgroup.Group
}

// Start builds and starts a session. Documents are saved under dataDir
// unless the config points somewhere else.
func Start(cfg *config.Instance, fs afero.Fs, dataDir string) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	docsDir := cfg.DocumentsDir()
	if docsDir == "" {
		docsDir = dataDir
	}
	if docsDir == "" {
		return nil, errors.New("no documents directory configured")
	}

	clock := clockwork.NewRealClock()
	ctx, cancel := context.WithCancel(context.Background())

	ws, eventCh := NewWorkshop(clock)
	b := broker.NewBroker(ctx, eventCh)
	b.Start()

	group, gctx := errgroup.WithContext(ctx)

	svc := &Service{
		cfg:    cfg,
		ws:     ws,
		broker: b,
		cancel: cancel,
		group:  group,
	}

	if cfg.AutosaveEnabled() {
		svc.autosaver = NewAutosaver(
			ws, fs, docsDir,
			cfg.AutosaveInterval(),
			cfg.AutosaveLockTimeout(),
			clock,
		)
		group.Go(func() error {
			return svc.autosaver.Run(gctx)
		})
	}

	// Keep an audit trail of every document event.
	auditCh, auditID := b.Subscribe(100)
	group.Go(func() error {
		defer b.Unsubscribe(auditID)
		for ev := range auditCh {
			log.Info().
				Str("method", ev.Method).
				Str("doc_id", ev.DocID.String()).
				Str("name", ev.Name).
				Msg("document event")
		}
		return nil
	})

	log.Info().Str("documents_dir", docsDir).Msg("service started")
	return svc, nil
}

// Workshop returns the session's document registry.
func (s *Service) Workshop() *Workshop {
	return s.ws
}

// Stop runs a final save sweep, then shuts down the workers and the broker.
func (s *Service) Stop() {
	// Sweep before cancelling so the broker is still draining events.
	if s.autosaver != nil {
		s.autosaver.Sweep()
	}

	s.cancel()
	if err := s.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker exited with error")
	}
	log.Info().Msg("service stopped")
}
