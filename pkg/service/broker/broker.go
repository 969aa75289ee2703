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

// Package broker provides a simple in-process broker for broadcasting
// document events to multiple consumers without blocking.
package broker

import (
	"context"

	"github.com/InkwellProject/inkwell-core/pkg/helpers/syncutil"
	"github.com/InkwellProject/inkwell-core/pkg/service/events"
	"github.com/rs/zerolog/log"
)

// Broker manages event subscriptions and broadcasts every event from its
// source channel to all subscribers. Sends to subscribers are non-blocking so
// a slow consumer cannot stall the workshop.
type Broker struct {
	ctx         context.Context
	source      <-chan events.Event
	subscribers map[int]chan events.Event
	mu          syncutil.RWMutex
	nextID      int
}

// NewBroker creates a broker reading from the given source channel.
func NewBroker(ctx context.Context, source <-chan events.Event) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]chan events.Event),
	}
}

// Start begins the broadcast loop in a goroutine. The loop exits, closing all
// subscriber channels, when the source channel closes or the context is
// cancelled.
func (b *Broker) Start() {
	go func() {
		for {
			select {
			case ev, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(ev)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
}

// broadcast sends an event to every subscriber without blocking. A full
// subscriber channel drops the event for that subscriber with a warning.
func (b *Broker) broadcast(ev events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("method", ev.Method).
				Msg("subscriber channel full, dropping event")
		}
	}
}

// Subscribe registers a new subscriber and returns its channel along with an
// ID for unsubscribing. bufferSize bounds how many events can queue before
// broadcasts start dropping for this subscriber.
func (b *Broker) Subscribe(bufferSize int) (eventChan <-chan events.Event, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	ch := make(chan events.Event, bufferSize)
	b.subscribers[id] = ch

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Msg("new subscriber registered")

	eventChan = ch
	return eventChan, id
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// more than once with the same ID.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("subscriber unsubscribed")
	}
}

// Stop closes all subscriber channels. Called during service shutdown.
func (b *Broker) Stop() {
	b.closeAllSubscribers()
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("closed subscriber channel on shutdown")
	}
	b.subscribers = make(map[int]chan events.Event)
}
