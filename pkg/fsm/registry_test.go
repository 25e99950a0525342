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

package fsm_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
)

// errorMetricValue reads the error counter for a component/reason pair from
// the default gatherer; 0 when the child has not been created yet.
func errorMetricValue(component, reason string) float64 {
	GinkgoHelper()

	families, err := prometheus.DefaultGatherer.Gather()
	Expect(err).NotTo(HaveOccurred())

	for _, family := range families {
		if family.GetName() != "payment_core_errors_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}

			if labels["component"] == component && labels["reason"] == reason {
				return metric.GetCounter().GetValue()
			}
		}
	}

	return 0
}

var _ = Describe("Registry", func() {
	var registry *fsm.Registry

	noop := func(state any, action any) (*fsm.Transition, error) {
		return nil, nil
	}

	BeforeEach(func() {
		registry = fsm.NewRegistry()
	})

	It("registers and looks up dispatch functions by tag", func() {
		Expect(registry.Register("A", noop)).To(Succeed())

		dispatch, ok := registry.Lookup("A")
		Expect(ok).To(BeTrue())
		Expect(dispatch).NotTo(BeNil())

		_, ok = registry.Lookup("B")
		Expect(ok).To(BeFalse())
	})

	It("rejects a nil dispatch function", func() {
		Expect(registry.Register("A", nil)).NotTo(Succeed())
		Expect(registry.Len()).To(BeZero())
	})

	It("fails loudly on duplicate registration", func() {
		Expect(registry.Register("A", noop)).To(Succeed())

		err := registry.Register("A", noop)
		Expect(err).To(MatchError(fsm.ErrAlreadyRegistered))
		Expect(err.Error()).To(ContainSubstring("A"))
		Expect(registry.Len()).To(Equal(1))
	})

	It("keeps the first entry when a duplicate is rejected", func() {
		marker := ""

		Expect(registry.Register("A", func(state any, action any) (*fsm.Transition, error) {
			marker = "first"

			return nil, nil
		})).To(Succeed())

		Expect(registry.Register("A", func(state any, action any) (*fsm.Transition, error) {
			marker = "second"

			return nil, nil
		})).To(MatchError(fsm.ErrAlreadyRegistered))

		dispatch, ok := registry.Lookup("A")
		Expect(ok).To(BeTrue())

		_, err := dispatch(nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(marker).To(Equal("first"))
	})

	It("counts rejected duplicates in the error metric", func() {
		before := errorMetricValue("state_registry", "duplicate_registration")

		Expect(registry.Register("A", noop)).To(Succeed())
		Expect(registry.Register("A", noop)).To(MatchError(fsm.ErrAlreadyRegistered))

		Expect(errorMetricValue("state_registry", "duplicate_registration")).To(Equal(before + 1))
	})

	It("tolerates concurrent registration of distinct tags", func() {
		const tags = 32

		var wg sync.WaitGroup

		wg.Add(tags)

		for i := 0; i < tags; i++ {
			go func(n int) {
				defer wg.Done()
				defer GinkgoRecover()

				tag := fsm.StateType(fmt.Sprintf("State%d", n))
				Expect(registry.Register(tag, noop)).To(Succeed())
			}(i)
		}

		wg.Wait()
		Expect(registry.Len()).To(Equal(tags))
	})

	It("yields exactly one winner when the same tag races", func() {
		const attempts = 16

		var (
			wg        sync.WaitGroup
			successes int32
			mu        sync.Mutex
		)

		wg.Add(attempts)

		for i := 0; i < attempts; i++ {
			go func() {
				defer wg.Done()

				if err := registry.Register("Contested", noop); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		Expect(successes).To(Equal(int32(1)))
		Expect(registry.Len()).To(Equal(1))
	})
})
