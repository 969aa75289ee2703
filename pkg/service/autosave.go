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

package service

import (
	"context"
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/document"
	"github.com/InkwellProject/inkwell-core/pkg/document/access"
	"github.com/InkwellProject/inkwell-core/pkg/service/events"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Autosaver is the background worker that periodically writes out dirty
// documents. It reads through read guards with a bounded lock timeout: a
// document busy under a write guard is skipped and retried on the next sweep,
// never blocked on indefinitely.
type Autosaver struct {
	ws          *Workshop
	fs          afero.Fs
	clock       clockwork.Clock
	dir         string
	interval    time.Duration
	lockTimeout time.Duration
}

// NewAutosaver creates an autosave worker for the workshop's documents,
// saving into dir on the given filesystem.
func NewAutosaver(
	ws *Workshop,
	fs afero.Fs,
	dir string,
	interval time.Duration,
	lockTimeout time.Duration,
	clock clockwork.Clock,
) *Autosaver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Autosaver{
		ws:          ws,
		fs:          fs,
		dir:         dir,
		interval:    interval,
		lockTimeout: lockTimeout,
		clock:       clock,
	}
}

// Run sweeps the workshop on every tick until the context is cancelled. It
// only ever returns the context's error, but matches the errgroup signature
// so the service can supervise it.
func (a *Autosaver) Run(ctx context.Context) error {
	log.Debug().Dur("interval", a.interval).Msg("autosave: worker started")
	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()
	defer log.Debug().Msg("autosave: worker stopped")

	for {
		select {
		case <-ticker.Chan():
			a.Sweep()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sweep saves every dirty document it can take a read guard on. Exported so
// a shutdown path can force a final sweep.
func (a *Autosaver) Sweep() {
	for _, doc := range a.ws.List() {
		a.saveOne(doc)
	}
}

func (a *Autosaver) saveOne(doc *document.Document) {
	if !doc.IsDirty() {
		return
	}

	g, err := access.Read(doc, a.lockTimeout)
	if err != nil {
		// Somebody is writing; try again next sweep.
		log.Warn().Str("doc_id", doc.ID().String()).Msg("autosave: document busy, skipping")
		events.AutosaveSkipped(a.ws.Events, doc.ID(), doc.Name())
		return
	}
	defer g.Release()

	if doc.IsClosed() {
		return
	}

	if err := doc.Save(a.fs, a.dir); err != nil {
		log.Error().Err(err).Str("doc_id", doc.ID().String()).Msg("autosave: save failed")
		return
	}

	events.DocumentSaved(a.ws.Events, doc.ID(), doc.Name())
	log.Debug().Str("doc_id", doc.ID().String()).Msg("autosave: document saved")
}
