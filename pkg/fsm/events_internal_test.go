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
	"fmt"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// White-box specs for the stream internals; publish is not part of the
// public surface, transitions are the only producer.
var _ = ginkgo.Describe("EventStream", func() {
	var stream *EventStream

	event := func(n int) TransitionEvent {
		return NewTransitionEvent(StateType(fmt.Sprintf("From%d", n)), StateType(fmt.Sprintf("To%d", n)))
	}

	ginkgo.BeforeEach(func() {
		stream = newEventStream()
	})

	ginkgo.It("delivers events in publish order", func() {
		for i := 0; i < 5; i++ {
			Expect(stream.publish(event(i))).To(BeTrue())
		}

		for i := 0; i < 5; i++ {
			got, ok, err := stream.TryNext()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.FromState).To(Equal(StateType(fmt.Sprintf("From%d", i))))
		}

		_, ok, err := stream.TryNext()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("never blocks the publisher, regardless of queue depth", func(ctx ginkgo.SpecContext) {
		for i := 0; i < 10_000; i++ {
			Expect(stream.publish(event(i))).To(BeTrue())
		}
	}, ginkgo.SpecTimeout(5*time.Second))

	ginkgo.It("wakes a blocked receiver on publish", func() {
		type result struct {
			event TransitionEvent
			err   error
		}

		received := make(chan result, 1)

		go func() {
			ev, err := stream.Next(context.Background())
			received <- result{event: ev, err: err}
		}()

		// Give the receiver time to block on the empty queue.
		Consistently(received, 50*time.Millisecond).ShouldNot(Receive())

		Expect(stream.publish(event(1))).To(BeTrue())

		var got result

		Eventually(received).Should(Receive(&got))
		Expect(got.err).NotTo(HaveOccurred())
		Expect(got.event.FromState).To(Equal(StateType("From1")))
	})

	ginkgo.It("honors context cancellation while waiting", func() {
		ctx, cancel := context.WithCancel(context.Background())

		errs := make(chan error, 1)

		go func() {
			_, err := stream.Next(ctx)
			errs <- err
		}()

		cancel()
		Eventually(errs).Should(Receive(MatchError(context.Canceled)))
	})

	ginkgo.It("drains queued events after Close, then reports closure", func() {
		Expect(stream.publish(event(1))).To(BeTrue())
		Expect(stream.publish(event(2))).To(BeTrue())

		stream.Close()

		// Publishing after close is dropped, never an error for the caller.
		Expect(stream.publish(event(3))).To(BeFalse())

		for i := 1; i <= 2; i++ {
			got, ok, err := stream.TryNext()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.FromState).To(Equal(StateType(fmt.Sprintf("From%d", i))))
		}

		_, _, err := stream.TryNext()
		Expect(err).To(MatchError(ErrStreamClosed))

		_, err = stream.Next(context.Background())
		Expect(err).To(MatchError(ErrStreamClosed))
	})

	ginkgo.It("wakes all pending receivers when closed", func() {
		const receivers = 4

		errs := make(chan error, receivers)

		for i := 0; i < receivers; i++ {
			go func() {
				_, err := stream.Next(context.Background())
				errs <- err
			}()
		}

		stream.Close()

		for i := 0; i < receivers; i++ {
			Eventually(errs).Should(Receive(MatchError(ErrStreamClosed)))
		}
	})

	ginkgo.It("is idempotent on Close", func() {
		stream.Close()
		stream.Close()

		_, _, err := stream.TryNext()
		Expect(err).To(MatchError(ErrStreamClosed))
	})
})
