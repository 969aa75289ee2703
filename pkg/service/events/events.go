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

// Package events defines the document lifecycle events the workshop emits
// and helpers for sending them.
package events

import "github.com/google/uuid"

const (
	// MethodDocumentOpened fires when a document is added to the workshop.
	MethodDocumentOpened = "documents.opened"
	// MethodDocumentSaved fires when a document's payload is written out.
	MethodDocumentSaved = "documents.saved"
	// MethodDocumentDestroyed fires when a document is closed and removed.
	MethodDocumentDestroyed = "documents.destroyed"
	// MethodAutosaveSkipped fires when the autosave worker could not take a
	// read guard on a dirty document before its timeout.
	MethodAutosaveSkipped = "autosave.skipped"
)

// Event is one document lifecycle notification.
type Event struct {
	Method string
	Name   string
	DocID  uuid.UUID
}

// DocumentOpened sends a documents.opened event.
func DocumentOpened(ch chan<- Event, id uuid.UUID, name string) {
	ch <- Event{Method: MethodDocumentOpened, DocID: id, Name: name}
}

// DocumentSaved sends a documents.saved event.
func DocumentSaved(ch chan<- Event, id uuid.UUID, name string) {
	ch <- Event{Method: MethodDocumentSaved, DocID: id, Name: name}
}

// DocumentDestroyed sends a documents.destroyed event.
func DocumentDestroyed(ch chan<- Event, id uuid.UUID, name string) {
	ch <- Event{Method: MethodDocumentDestroyed, DocID: id, Name: name}
}

// AutosaveSkipped sends an autosave.skipped event.
func AutosaveSkipped(ch chan<- Event, id uuid.UUID, name string) {
	ch <- Event{Method: MethodAutosaveSkipped, DocID: id, Name: name}
}
