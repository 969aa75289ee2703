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

// Package doclock implements the timed reader-writer lock that protects a
// document's content. Unlike sync.RWMutex, every acquisition takes a timeout,
// a held read lock can be upgraded to the write lock without an unlocked
// window in between, and a held write lock can be downgraded back to a read
// lock.
//
// LOCKING RULES: read acquisitions are granted whenever no writer holds the
// lock, even while a writer or an upgrade is waiting. This keeps nested read
// acquisition from the same task deadlock-free; writers rely on their timeout
// instead of priority.
package doclock

import (
	"time"

	"github.com/InkwellProject/inkwell-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
)

// Mode selects the kind of hold requested from Acquire.
type Mode int

const (
	// ModeRead requests a shared hold. Any number of readers may hold the
	// lock at once.
	ModeRead Mode = iota
	// ModeWrite requests the exclusive hold.
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Lock is a timed reader-writer lock with upgrade and downgrade support.
// The zero value is not usable; use New or NewWithClock.
type Lock struct {
	clock   clockwork.Clock
	gen     chan struct{}
	mu      syncutil.Mutex
	readers int
	writer  bool
}

// New returns an unlocked Lock using the real clock.
func New() *Lock {
	return NewWithClock(clockwork.NewRealClock())
}

// NewWithClock returns an unlocked Lock whose timeouts are measured against
// the given clock. Passing a fake clock makes timeout behavior testable
// without real waiting.
func NewWithClock(clock clockwork.Clock) *Lock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Lock{
		clock: clock,
		gen:   make(chan struct{}),
	}
}

// Acquire attempts to take a hold in the given mode, blocking up to timeout.
// It reports whether the hold was granted. On timeout no partial state is
// left behind: the lock is exactly as it was before the attempt.
func (l *Lock) Acquire(mode Mode, timeout time.Duration) bool {
	deadline := l.clock.Now().Add(timeout)

	l.mu.Lock()
	for {
		if l.grant(mode) {
			l.mu.Unlock()
			return true
		}

		wait := l.gen
		l.mu.Unlock()

		if !l.waitChange(wait, deadline) {
			return false
		}
		l.mu.Lock()
	}
}

// Release drops whatever hold the caller has: the writer slot if the lock is
// write-held, otherwise one reader slot. Releasing an unlocked Lock is a
// programming error and panics.
func (l *Lock) Release() {
	l.mu.Lock()
	switch {
	case l.writer:
		l.writer = false
	case l.readers > 0:
		l.readers--
	default:
		l.mu.Unlock()
		panic("doclock: release of unlocked lock")
	}
	l.notifyLocked()
	l.mu.Unlock()
}

// Upgrade converts a read hold owned by the caller into the write hold,
// blocking up to timeout for other readers to drain. The conversion happens
// in one step under the state mutex, so no other acquirer can slip in between
// the read hold ending and the write hold beginning. On timeout the caller's
// read hold is left intact. Calling Upgrade without a read hold panics.
func (l *Lock) Upgrade(timeout time.Duration) bool {
	deadline := l.clock.Now().Add(timeout)

	l.mu.Lock()
	if l.readers == 0 || l.writer {
		l.mu.Unlock()
		panic("doclock: upgrade without a read hold")
	}
	for {
		if l.readers == 1 {
			// The caller is the last reader standing: swap its hold for
			// the writer slot atomically.
			l.readers = 0
			l.writer = true
			l.mu.Unlock()
			return true
		}

		wait := l.gen
		l.mu.Unlock()

		if !l.waitChange(wait, deadline) {
			return false
		}
		l.mu.Lock()
	}
}

// Downgrade converts the write hold back into a single read hold. It never
// blocks and never fails: the writer slot is exclusive, so the reader slot is
// free by definition. Calling Downgrade without the write hold panics.
func (l *Lock) Downgrade() {
	l.mu.Lock()
	if !l.writer {
		l.mu.Unlock()
		panic("doclock: downgrade without the write hold")
	}
	l.writer = false
	l.readers = 1
	l.notifyLocked()
	l.mu.Unlock()
}

// State returns the current holder counts, for logging and tests. It is a
// snapshot; by the time the caller looks at it the lock may have moved on.
func (l *Lock) State() (readers int, writer bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readers, l.writer
}

// grant takes the hold if the current state allows it. Caller must hold mu.
func (l *Lock) grant(mode Mode) bool {
	switch mode {
	case ModeRead:
		if !l.writer {
			l.readers++
			return true
		}
	case ModeWrite:
		if !l.writer && l.readers == 0 {
			l.writer = true
			return true
		}
	default:
		panic("doclock: invalid lock mode")
	}
	return false
}

// notifyLocked wakes every waiter by retiring the current generation channel.
// Caller must hold mu. Waiters re-check the state and go back to sleep on the
// new channel if they still cannot be granted.
func (l *Lock) notifyLocked() {
	close(l.gen)
	l.gen = make(chan struct{})
}

// waitChange blocks until the given generation channel is retired or the
// deadline passes, reporting true in the former case.
func (l *Lock) waitChange(wait <-chan struct{}, deadline time.Time) bool {
	remaining := deadline.Sub(l.clock.Now())
	if remaining <= 0 {
		return false
	}

	timer := l.clock.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-wait:
		return true
	case <-timer.Chan():
		return false
	}
}
