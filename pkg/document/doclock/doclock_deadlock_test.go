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

package doclock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMixedWorkload_NoDeadlock hammers one Lock with concurrent readers,
// writers and upgraders and checks that every granted hold is released and
// the lock ends up fully unlocked.
//
// With -tags=deadlock, go-deadlock watches the internal state mutex as an
// additional safety net.
func TestMixedWorkload_NoDeadlock(t *testing.T) {
	t.Parallel()

	l := New()

	var wg sync.WaitGroup

	// Readers: acquire, linger, release.
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if l.Acquire(ModeRead, 200*time.Millisecond) {
					time.Sleep(time.Millisecond)
					l.Release()
				}
			}
		}()
	}

	// Writers: exclusive holds with short timeouts, failures are expected
	// under contention and simply skipped.
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				if l.Acquire(ModeWrite, 50*time.Millisecond) {
					time.Sleep(time.Millisecond)
					l.Release()
				}
			}
		}()
	}

	// Upgraders: take a read hold, try to elevate it, demote on success.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 25 {
			if !l.Acquire(ModeRead, 200*time.Millisecond) {
				continue
			}
			if l.Upgrade(50 * time.Millisecond) {
				l.Downgrade()
			}
			l.Release()
		}
	}()

	wg.Wait()

	readers, writer := l.State()
	assert.Equal(t, 0, readers)
	assert.False(t, writer)
}
