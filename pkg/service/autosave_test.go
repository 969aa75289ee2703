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
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/document/access"
	"github.com/InkwellProject/inkwell-core/pkg/service/events"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepSavesDirtyDocuments(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	ws, eventCh := NewWorkshop(nil)
	a := NewAutosaver(ws, fs, "/documents", time.Second, 100*time.Millisecond, nil)

	doc := ws.Open("sketch")
	expectEvent(t, eventCh, events.MethodDocumentOpened)

	w, err := access.Write(doc, time.Second)
	require.NoError(t, err)
	w.Doc().SetPayload([]byte("stroke"))
	w.Release()

	a.Sweep()

	exists, err := afero.Exists(fs, filepath.Join("/documents", doc.Filename()))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, doc.IsDirty())

	ev := expectEvent(t, eventCh, events.MethodDocumentSaved)
	assert.Equal(t, doc.ID(), ev.DocID)
}

func TestSweepIgnoresCleanDocuments(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	ws, eventCh := NewWorkshop(nil)
	a := NewAutosaver(ws, fs, "/documents", time.Second, 100*time.Millisecond, nil)

	doc := ws.Open("sketch")
	expectEvent(t, eventCh, events.MethodDocumentOpened)

	a.Sweep()

	exists, err := afero.Exists(fs, filepath.Join("/documents", doc.Filename()))
	require.NoError(t, err)
	assert.False(t, exists)

	select {
	case ev := <-eventCh:
		t.Fatalf("unexpected event: %s", ev.Method)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSweepSkipsWriteLockedDocument(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	ws, eventCh := NewWorkshop(nil)
	a := NewAutosaver(ws, fs, "/documents", time.Second, 20*time.Millisecond, nil)

	doc := ws.Open("sketch")
	expectEvent(t, eventCh, events.MethodDocumentOpened)

	w, err := access.Write(doc, time.Second)
	require.NoError(t, err)
	w.Doc().SetPayload([]byte("stroke"))
	defer w.Release()

	a.Sweep()

	// The busy document was skipped, not saved, and stays dirty.
	exists, err := afero.Exists(fs, filepath.Join("/documents", doc.Filename()))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, doc.IsDirty())

	ev := expectEvent(t, eventCh, events.MethodAutosaveSkipped)
	assert.Equal(t, doc.ID(), ev.DocID)
}

func TestRunSavesOnTick(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	ws, eventCh := NewWorkshop(nil)
	a := NewAutosaver(ws, fs, "/documents", 10*time.Millisecond, 100*time.Millisecond, nil)

	doc := ws.Open("sketch")
	expectEvent(t, eventCh, events.MethodDocumentOpened)

	w, err := access.Write(doc, time.Second)
	require.NoError(t, err)
	w.Doc().SetPayload([]byte("stroke"))
	w.Release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		exists, eerr := afero.Exists(fs, filepath.Join("/documents", doc.Filename()))
		return eerr == nil && exists
	}, time.Second, 10*time.Millisecond)

	cancel()
	err = <-done
	require.True(t, errors.Is(err, context.Canceled))
}
