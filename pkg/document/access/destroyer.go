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

package access

import (
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/document"
	"github.com/google/uuid"
)

// Owner is the registry a destroyed document is removed from, so no new
// guards can be constructed for it afterwards.
type Owner interface {
	Forget(id uuid.UUID)
}

// Destroyer is a write guard that can additionally tear the document down.
// Construct it with NewDestroyer, call Destroy at most once, and defer
// Release for the paths where Destroy never runs.
type Destroyer struct {
	guard     *Guard
	owner     Owner
	destroyed bool
}

// NewDestroyer takes the exclusive hold on doc within the timeout and returns
// a guard prepared to destroy it. owner may be nil when the document is not
// registered anywhere.
func NewDestroyer(owner Owner, doc *document.Document, timeout time.Duration) (*Destroyer, error) {
	g, err := Write(doc, timeout)
	if err != nil {
		return nil, err
	}
	return &Destroyer{guard: g, owner: owner}, nil
}

// Doc returns the guarded document. Panics when the guard is empty, which
// includes the state after a successful Destroy.
func (d *Destroyer) Doc() *document.Document { return d.guard.Doc() }

// Destroy runs the document's close step, releases the write hold, removes
// the document from its owner and clears the reference. The hold is released
// before the reference is dropped so nothing operates on a document that is
// already gone. A second call is a no-op. Calling Destroy on an empty guard,
// or on one that already gave its hold back through Release, is a programming
// error and panics: the close step must run under the write hold.
func (d *Destroyer) Destroy() {
	if d.destroyed {
		return
	}
	if d.guard.doc == nil {
		panic("access: Destroy on an empty guard")
	}
	if !d.guard.held {
		panic("access: Destroy without the write hold")
	}

	doc := d.guard.doc
	doc.Close()
	d.guard.Release()

	if d.owner != nil {
		d.owner.Forget(doc.ID())
	}
	d.guard.doc = nil
	d.destroyed = true
}

// Release gives the write hold back if Destroy never ran. Idempotent, safe
// after Destroy.
func (d *Destroyer) Release() {
	d.guard.Release()
}
