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

// Package document defines the shared mutable document that a foreground UI
// actor and background workers operate on, and the lock surface the access
// guards consume.
//
// LOCKING RULES: the document's own reader-writer lock is the only protection
// for its content. Content accessors must be called while holding the
// matching access guard; they do no locking of their own. The dirty flag is
// atomic so concurrent read-guard holders can observe it without a data race.
package document

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/document/doclock"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// FileExt is the on-disk extension for saved document payloads.
const FileExt = ".ink"

// Document is a single shared mutable document. Its identity is fixed at
// creation; everything else changes only under the appropriate lock hold.
type Document struct {
	lock    *doclock.Lock
	name    string
	payload []byte
	id      uuid.UUID
	dirty   atomic.Bool
	closed  bool
}

// New creates an open, empty, clean document.
func New(name string) *Document {
	return NewWithClock(name, clockwork.NewRealClock())
}

// NewWithClock creates a document whose lock timeouts are measured against
// the given clock, for tests that fake time.
func NewWithClock(name string, clock clockwork.Clock) *Document {
	return &Document{
		id:   uuid.New(),
		name: name,
		lock: doclock.NewWithClock(clock),
	}
}

// ID returns the document's immutable identity.
func (d *Document) ID() uuid.UUID { return d.id }

// Name returns the document's display name.
func (d *Document) Name() string { return d.name }

// Filename returns the file name the document's payload is saved under.
func (d *Document) Filename() string { return d.id.String() + FileExt }

// Lock attempts to take a hold on the document in the given mode within the
// timeout, reporting whether the hold was granted.
func (d *Document) Lock(mode doclock.Mode, timeout time.Duration) bool {
	return d.lock.Acquire(mode, timeout)
}

// Unlock releases whatever hold the caller has on the document.
func (d *Document) Unlock() {
	d.lock.Release()
}

// LockToWrite atomically upgrades the caller's read hold to the write hold,
// reporting whether the upgrade completed within the timeout. On failure the
// read hold is left intact.
func (d *Document) LockToWrite(timeout time.Duration) bool {
	return d.lock.Upgrade(timeout)
}

// UnlockToRead atomically demotes the caller's write hold back to a read
// hold.
func (d *Document) UnlockToRead() {
	d.lock.Downgrade()
}

// LockState returns the current lock holder counts, for logging and tests.
func (d *Document) LockState() (readers int, writer bool) {
	return d.lock.State()
}

// Payload returns the document's content. Callers must hold at least a read
// guard.
func (d *Document) Payload() []byte { return d.payload }

// SetPayload replaces the document's content and marks it dirty. Callers must
// hold a write guard.
func (d *Document) SetPayload(p []byte) {
	d.payload = p
	d.dirty.Store(true)
}

// IsDirty reports whether the document has unsaved changes.
func (d *Document) IsDirty() bool { return d.dirty.Load() }

// Close runs the document's shutdown step. After Close the document must not
// be used for further content operations. Callers must hold a write guard.
func (d *Document) Close() {
	d.closed = true
}

// IsClosed reports whether Close has run. Callers must hold a guard.
func (d *Document) IsClosed() bool { return d.closed }

// Save writes the document's payload into dir and clears the dirty flag.
// Callers must hold at least a read guard: writers are excluded for the
// duration, so the payload cannot change between the write-out and the flag
// reset.
func (d *Document) Save(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create documents dir: %w", err)
	}
	path := filepath.Join(dir, d.Filename())
	if err := afero.WriteFile(fs, path, d.payload, 0o600); err != nil {
		return fmt.Errorf("failed to save document %s: %w", d.id, err)
	}
	d.dirty.Store(false)
	return nil
}

// Load reads a previously saved payload from path into a fresh, clean
// document named after the file.
func Load(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document from %s: %w", path, err)
	}
	name := filepath.Base(path)
	if filepath.Ext(name) == FileExt {
		name = name[:len(name)-len(FileExt)]
	}
	doc := New(name)
	doc.payload = data
	return doc, nil
}
