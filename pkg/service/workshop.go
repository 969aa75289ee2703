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
	"github.com/InkwellProject/inkwell-core/pkg/document"
	"github.com/InkwellProject/inkwell-core/pkg/helpers/syncutil"
	"github.com/InkwellProject/inkwell-core/pkg/service/events"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Workshop owns the open documents. It hands out references; all content
// access goes through guards on each document's own lock.
//
// LOCKING RULES: mu protects the registry and the active-document marker,
// never document content. Event payloads are prepared inside the lock and
// sent outside it so a slow consumer cannot block the registry.
type Workshop struct {
	clock     clockwork.Clock
	documents map[uuid.UUID]*document.Document
	Events    chan<- events.Event
	active    uuid.UUID
	mu        syncutil.RWMutex
}

// NewWorkshop creates an empty workshop and returns the channel its document
// events come out of, for wiring into a broker.
func NewWorkshop(clock clockwork.Clock) (ws *Workshop, eventCh <-chan events.Event) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	// Buffer gives headroom for event bursts (autosave sweeps over many
	// documents) without stalling the registry.
	ch := make(chan events.Event, 100)
	return &Workshop{
		clock:     clock,
		documents: make(map[uuid.UUID]*document.Document),
		Events:    ch,
	}, ch
}

// Open creates a fresh document, registers it and makes it the active
// document if there is none.
func (w *Workshop) Open(name string) *document.Document {
	doc := document.NewWithClock(name, w.clock)

	w.mu.Lock()
	w.documents[doc.ID()] = doc
	if w.active == uuid.Nil {
		w.active = doc.ID()
	}
	w.mu.Unlock()

	// Send event outside lock to prevent deadlock
	events.DocumentOpened(w.Events, doc.ID(), doc.Name())
	log.Info().Str("doc_id", doc.ID().String()).Str("name", name).Msg("document opened")
	return doc
}

// OpenFrom loads a saved payload from the filesystem into a new registered
// document.
func (w *Workshop) OpenFrom(fs afero.Fs, path string) (*document.Document, error) {
	doc, err := document.Load(fs, path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.documents[doc.ID()] = doc
	if w.active == uuid.Nil {
		w.active = doc.ID()
	}
	w.mu.Unlock()

	events.DocumentOpened(w.Events, doc.ID(), doc.Name())
	log.Info().Str("doc_id", doc.ID().String()).Str("path", path).Msg("document loaded")
	return doc, nil
}

// Get returns the registered document with the given ID.
func (w *Workshop) Get(id uuid.UUID) (*document.Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.documents[id]
	return doc, ok
}

// Active returns the active document, or nil when the workshop is empty.
func (w *Workshop) Active() *document.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.documents[w.active]
}

// SetActive marks the document with the given ID active, reporting whether
// it is registered.
func (w *Workshop) SetActive(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.documents[id]; !ok {
		return false
	}
	w.active = id
	return true
}

// List returns all registered documents.
func (w *Workshop) List() []*document.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	docs := make([]*document.Document, 0, len(w.documents))
	for _, doc := range w.documents {
		docs = append(docs, doc)
	}
	return docs
}

// Count returns how many documents are open.
func (w *Workshop) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.documents)
}

// Forget removes a document from the registry so no new guards can be built
// for it. The destroying guard calls this after releasing the write hold.
func (w *Workshop) Forget(id uuid.UUID) {
	w.mu.Lock()

	doc, ok := w.documents[id]
	var name string
	if ok {
		name = doc.Name()
		delete(w.documents, id)
	}
	if w.active == id {
		w.active = uuid.Nil
		// Promote any remaining document so there is always an active one
		// while the workshop is non-empty.
		for did := range w.documents {
			w.active = did
			break
		}
	}

	w.mu.Unlock()

	if !ok {
		return
	}

	// Send event outside lock to prevent deadlock
	events.DocumentDestroyed(w.Events, id, name)
	log.Info().Str("doc_id", id.String()).Str("name", name).Msg("document forgotten")
}
