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

// Package access provides scoped, timeout-bounded guards for reading and
// writing a shared document.
//
// A guard takes a hold on the document's lock when it is constructed and
// gives it back in Release, which callers defer so the hold ends on every
// exit path. There is one guard type with an internal mode tag instead of a
// hierarchy; each construction path is a named function:
//
//	g, err := access.Read(doc, timeout)     // shared hold
//	g, err := access.ReadFrom(src, timeout) // independent second shared hold
//	g, err := access.Write(doc, timeout)    // exclusive hold
//	g, err := access.Upgrade(src, timeout)  // elevate src's read hold to write
//
// The only expected error is ErrDocumentLocked, returned when the hold could
// not be taken within the timeout; the caller decides whether to retry.
// Contract violations (using an empty guard, upgrading a non-read guard)
// panic.
//
// Guards belong to the goroutine that constructed them. A guard made by
// Upgrade must be released before the read guard it came from: its Release
// demotes the write hold back to the read hold the source guard still thinks
// it owns.
package access

import (
	"errors"
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/document"
	"github.com/InkwellProject/inkwell-core/pkg/document/doclock"
)

// ErrDocumentLocked is returned when a guard cannot take its hold within the
// timeout because another task is holding the document. The operation may be
// retried with a new guard.
var ErrDocumentLocked = errors.New("document is locked by another task, try again later")

// guardMode tags which construction path produced a guard, which decides how
// Release gives the hold back.
type guardMode uint8

const (
	modeNone guardMode = iota
	modeRead
	modeWrite
	modeElevated
)

// Guard is a scope-bound hold on one document's lock. The zero value is an
// empty guard: it references no document and holds no lock.
//
// A Guard must not be copied while held; there is no way to duplicate or
// transfer a hold except through the construction functions.
type Guard struct {
	doc  *document.Document
	mode guardMode
	held bool
}

// Read takes a shared hold on doc within the timeout. A nil doc yields an
// empty guard and no lock attempt.
func Read(doc *document.Document, timeout time.Duration) (*Guard, error) {
	g := &Guard{doc: doc}
	if doc == nil {
		return g, nil
	}
	if !doc.Lock(doclock.ModeRead, timeout) {
		return nil, ErrDocumentLocked
	}
	g.mode = modeRead
	g.held = true
	return g, nil
}

// ReadFrom takes a second, independent shared hold on the document referenced
// by src. The new guard releases on its own; it shares nothing with src but
// the document reference. The underlying lock grants read holds while writers
// wait, so this nested acquisition cannot deadlock against a pending writer.
//
// src must be a read guard (or empty, which yields another empty guard).
func ReadFrom(src *Guard, timeout time.Duration) (*Guard, error) {
	if src == nil {
		panic("access: ReadFrom with nil source guard")
	}
	if src.doc != nil && (src.mode != modeRead || !src.held) {
		panic("access: ReadFrom requires a held read guard")
	}
	return Read(src.doc, timeout)
}

// Write takes the exclusive hold on doc within the timeout. A nil doc yields
// an empty guard and no lock attempt.
func Write(doc *document.Document, timeout time.Duration) (*Guard, error) {
	g := &Guard{doc: doc}
	if doc == nil {
		return g, nil
	}
	if !doc.Lock(doclock.ModeWrite, timeout) {
		return nil, ErrDocumentLocked
	}
	g.mode = modeWrite
	g.held = true
	return g, nil
}

// Upgrade elevates the read hold owned by src to the exclusive hold, with no
// window in between where the document is unlocked. On ErrDocumentLocked the
// source guard's read hold is untouched.
//
// src must be a held read guard; the returned guard must be released before
// src, and its Release demotes the document back to read-held rather than
// unlocking it.
func Upgrade(src *Guard, timeout time.Duration) (*Guard, error) {
	if src == nil {
		panic("access: Upgrade with nil source guard")
	}
	if src.doc == nil {
		return &Guard{}, nil
	}
	if src.mode != modeRead || !src.held {
		panic("access: Upgrade requires a held read guard")
	}
	if !src.doc.LockToWrite(timeout) {
		return nil, ErrDocumentLocked
	}
	return &Guard{doc: src.doc, mode: modeElevated, held: true}, nil
}

// Doc returns the guarded document. Calling Doc on an empty guard is a
// programming error and panics.
func (g *Guard) Doc() *document.Document {
	if g.doc == nil {
		panic("access: dereference of empty guard")
	}
	return g.doc
}

// Empty reports whether the guard references no document.
func (g *Guard) Empty() bool { return g.doc == nil }

// Held reports whether the guard currently holds its lock.
func (g *Guard) Held() bool { return g.held }

// Release gives the hold back: a plain unlock for read and write guards, a
// demotion back to read for elevated guards. Release is idempotent; calling
// it again (or on an empty guard) is a no-op. Callers defer it at
// construction so the hold ends on every exit path.
func (g *Guard) Release() {
	if !g.held {
		return
	}
	g.held = false
	switch g.mode {
	case modeRead, modeWrite:
		g.doc.Unlock()
	case modeElevated:
		g.doc.UnlockToRead()
	case modeNone:
	}
}
