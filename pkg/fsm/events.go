// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fsm

import (
	"context"
	"sync"

	"github.com/united-manufacturing-hub/payment-core/pkg/metrics"
)

// EventStream is the unbounded FIFO feed of transition events.
//
// Publishing never blocks and never fails the committing Execute call; a
// transition must not be rolled back because nobody is listening. All clones
// of the facade share one stream, events are delivered in commit order.
type EventStream struct {
	notify chan struct{}
	queue  []TransitionEvent
	mu     sync.Mutex
	closed bool
}

func newEventStream() *EventStream {
	return &EventStream{
		// 1-buffered so a publisher can always signal without blocking.
		notify: make(chan struct{}, 1),
	}
}

// publish enqueues an event. Returns false if the stream is already closed,
// which the caller logs but never surfaces.
func (s *EventStream) publish(event TransitionEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		metrics.IncEventsDropped()

		return false
	}

	s.queue = append(s.queue, event)
	metrics.IncEventsPublished()
	s.signal()

	return true
}

// signal wakes one waiting receiver. Callers must hold s.mu.
func (s *EventStream) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TryNext returns the next event without blocking.
// ok reports whether an event was available; after Close and drain it
// returns ErrStreamClosed.
func (s *EventStream) TryNext() (event TransitionEvent, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		if s.closed {
			// Pass the wakeup on so every blocked receiver learns about the
			// closure, not just the one that consumed this token.
			s.signal()

			return TransitionEvent{}, false, ErrStreamClosed
		}

		return TransitionEvent{}, false, nil
	}

	event = s.queue[0]
	s.queue = s.queue[1:]

	// Keep the signal pending for other receivers if events remain.
	if len(s.queue) > 0 || s.closed {
		s.signal()
	}

	return event, true, nil
}

// Next blocks until an event is available, the stream is closed and drained,
// or the context is done.
func (s *EventStream) Next(ctx context.Context) (TransitionEvent, error) {
	for {
		event, ok, err := s.TryNext()
		if err != nil {
			return TransitionEvent{}, err
		}

		if ok {
			return event, nil
		}

		select {
		case <-ctx.Done():
			return TransitionEvent{}, ctx.Err()
		case <-s.notify:
		}
	}
}

// Close marks the stream closed. Queued events remain retrievable; further
// publishes are dropped.
func (s *EventStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.signal()
}
