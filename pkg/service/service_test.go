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
	"path/filepath"
	"testing"
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/config"
	"github.com/InkwellProject/inkwell-core/pkg/document/access"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestServiceStartStop(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := newTestConfig(t)

	svc, err := Start(cfg, fs, "/data/documents")
	require.NoError(t, err)
	require.NotNil(t, svc.Workshop())

	svc.Stop()
}

func TestServiceRequiresConfig(t *testing.T) {
	_, err := Start(nil, afero.NewMemMapFs(), "/data")
	require.Error(t, err)
}

func TestServiceRequiresDocumentsDir(t *testing.T) {
	cfg := newTestConfig(t)
	_, err := Start(cfg, afero.NewMemMapFs(), "")
	require.Error(t, err)
}

func TestServiceStopRunsFinalSweep(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := newTestConfig(t)

	svc, err := Start(cfg, fs, "/data/documents")
	require.NoError(t, err)

	doc := svc.Workshop().Open("sketch")
	w, err := access.Write(doc, time.Second)
	require.NoError(t, err)
	w.Doc().SetPayload([]byte("stroke"))
	w.Release()

	// The configured autosave interval is far away; Stop must still write
	// the dirty document out before shutting down.
	svc.Stop()

	exists, err := afero.Exists(fs, filepath.Join("/data/documents", doc.Filename()))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, doc.IsDirty())
}

func TestServiceHonorsConfiguredDocumentsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := newTestConfig(t)
	cfg.SetDocumentsDir("/custom/documents")

	svc, err := Start(cfg, fs, "/data/documents")
	require.NoError(t, err)

	doc := svc.Workshop().Open("sketch")
	w, err := access.Write(doc, time.Second)
	require.NoError(t, err)
	w.Doc().SetPayload([]byte("stroke"))
	w.Release()

	svc.Stop()

	exists, err := afero.Exists(fs, filepath.Join("/custom/documents", doc.Filename()))
	require.NoError(t, err)
	assert.True(t, exists)
}
