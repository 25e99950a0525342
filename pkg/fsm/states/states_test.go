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

package states_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
	"github.com/united-manufacturing-hub/payment-core/pkg/fsm/states"
)

var _ = Describe("AwaitingInfo", func() {
	var state *states.AwaitingInfo

	BeforeEach(func() {
		state = states.NewAwaitingInfo()
	})

	Describe("SetAmount", func() {
		It("stores a positive amount without transitioning", func() {
			transition, err := state.Apply(states.SetAmount{Amount: 42.50})
			Expect(err).NotTo(HaveOccurred())
			Expect(transition).To(BeNil())
			Expect(state.Amount).To(HaveValue(Equal(42.50)))
		})

		It("rejects zero", func() {
			_, err := state.Apply(states.SetAmount{Amount: 0})
			Expect(fsm.IsValidationError(err)).To(BeTrue())
			Expect(state.Amount).To(BeNil())
		})

		It("rejects negative amounts", func() {
			_, err := state.Apply(states.SetAmount{Amount: -5})
			Expect(fsm.IsValidationError(err)).To(BeTrue())
			Expect(state.Amount).To(BeNil())
		})

		It("keeps a previously set amount when a later one is rejected", func() {
			_, err := state.Apply(states.SetAmount{Amount: 10})
			Expect(err).NotTo(HaveOccurred())

			_, err = state.Apply(states.SetAmount{Amount: -1})
			Expect(fsm.IsValidationError(err)).To(BeTrue())
			Expect(state.Amount).To(HaveValue(Equal(10.0)))
		})
	})

	Describe("SetPaymentMethod", func() {
		It("stores a known method", func() {
			transition, err := state.Apply(states.SetPaymentMethod{Method: states.MethodDebit})
			Expect(err).NotTo(HaveOccurred())
			Expect(transition).To(BeNil())
			Expect(state.Method).To(HaveValue(Equal(states.MethodDebit)))
		})

		It("rejects an unknown method", func() {
			_, err := state.Apply(states.SetPaymentMethod{Method: "barter"})
			Expect(fsm.IsValidationError(err)).To(BeTrue())
			Expect(state.Method).To(BeNil())
		})
	})

	Describe("ConfirmInfo", func() {
		It("requires the amount", func() {
			_, err := state.Apply(states.SetPaymentMethod{Method: states.MethodCredit})
			Expect(err).NotTo(HaveOccurred())

			_, err = state.Apply(states.ConfirmInfo{})
			Expect(fsm.IsPreconditionError(err)).To(BeTrue())
		})

		It("requires the method", func() {
			_, err := state.Apply(states.SetAmount{Amount: 10})
			Expect(err).NotTo(HaveOccurred())

			_, err = state.Apply(states.ConfirmInfo{})
			Expect(fsm.IsPreconditionError(err)).To(BeTrue())
		})

		It("constructs the EMVPayment successor once both are set", func() {
			_, err := state.Apply(states.SetAmount{Amount: 99.99})
			Expect(err).NotTo(HaveOccurred())

			_, err = state.Apply(states.SetPaymentMethod{Method: states.MethodCredit})
			Expect(err).NotTo(HaveOccurred())

			transition, err := state.Apply(states.ConfirmInfo{})
			Expect(err).NotTo(HaveOccurred())
			Expect(transition).NotTo(BeNil())
			Expect(transition.NextType).To(Equal(fsm.StateEMVPayment))

			next, ok := transition.Next.(*states.EMVPayment)
			Expect(ok).To(BeTrue())
			Expect(next.Info.Amount).To(Equal(99.99))
			Expect(next.Info.Method).To(Equal(states.MethodCredit))
			Expect(next.Processing).To(BeFalse())
		})
	})

	It("rejects actions belonging to other states", func() {
		_, err := state.Apply(states.ProcessPayment{})
		Expect(fsm.IsIncompatibleAction(err)).To(BeTrue())

		_, err = state.Apply(states.Reset{})
		Expect(fsm.IsIncompatibleAction(err)).To(BeTrue())
	})

	It("describes itself with and without collected info", func() {
		Expect(state.Description()).To(Equal("awaiting payment information"))

		_, err := state.Apply(states.SetAmount{Amount: 12.34})
		Expect(err).NotTo(HaveOccurred())

		_, err = state.Apply(states.SetPaymentMethod{Method: states.MethodDebit})
		Expect(err).NotTo(HaveOccurred())

		Expect(state.Description()).To(Equal("awaiting confirmation: 12.34 (Debit)"))
	})
})

var _ = Describe("EMVPayment", func() {
	var state *states.EMVPayment

	BeforeEach(func() {
		state = &states.EMVPayment{
			Info: states.PaymentInfo{Amount: 25.00, Method: states.MethodDebit},
		}
	})

	Describe("ProcessPayment", func() {
		It("starts processing in place", func() {
			transition, err := state.Apply(states.ProcessPayment{})
			Expect(err).NotTo(HaveOccurred())
			Expect(transition).To(BeNil())
			Expect(state.Processing).To(BeTrue())
		})

		It("rejects a second start", func() {
			_, err := state.Apply(states.ProcessPayment{})
			Expect(err).NotTo(HaveOccurred())

			_, err = state.Apply(states.ProcessPayment{})
			Expect(fsm.IsPreconditionError(err)).To(BeTrue())
			Expect(state.Processing).To(BeTrue())
		})
	})

	Describe("CompletePayment", func() {
		result := states.EMVResult{
			TransactionID:     "tx-1",
			AuthorizationCode: "auth-1",
			Timestamp:         "2026-08-23T10:00:00Z",
		}

		It("requires processing to have started", func() {
			_, err := state.Apply(states.CompletePayment{Result: result})
			Expect(fsm.IsPreconditionError(err)).To(BeTrue())
		})

		It("carries info and result into PaymentSuccess", func() {
			_, err := state.Apply(states.ProcessPayment{})
			Expect(err).NotTo(HaveOccurred())

			transition, err := state.Apply(states.CompletePayment{Result: result})
			Expect(err).NotTo(HaveOccurred())
			Expect(transition).NotTo(BeNil())
			Expect(transition.NextType).To(Equal(fsm.StatePaymentSuccess))

			next, ok := transition.Next.(*states.PaymentSuccess)
			Expect(ok).To(BeTrue())
			Expect(next.Info).To(Equal(state.Info))
			Expect(next.Result).To(Equal(result))
		})
	})

	Describe("CancelPayment", func() {
		It("hands back a fresh AwaitingInfo, not a clone", func() {
			_, err := state.Apply(states.ProcessPayment{})
			Expect(err).NotTo(HaveOccurred())

			transition, err := state.Apply(states.CancelPayment{})
			Expect(err).NotTo(HaveOccurred())
			Expect(transition.NextType).To(Equal(fsm.StateAwaitingInfo))

			next, ok := transition.Next.(*states.AwaitingInfo)
			Expect(ok).To(BeTrue())
			Expect(next.Amount).To(BeNil())
			Expect(next.Method).To(BeNil())
		})
	})

	It("rejects actions belonging to other states", func() {
		_, err := state.Apply(states.SetAmount{Amount: 1})
		Expect(fsm.IsIncompatibleAction(err)).To(BeTrue())
	})

	It("describes idle and processing phases differently", func() {
		Expect(state.Description()).To(Equal("ready to process payment of 25.00"))

		_, err := state.Apply(states.ProcessPayment{})
		Expect(err).NotTo(HaveOccurred())

		Expect(state.Description()).To(Equal("processing payment of 25.00..."))
	})
})

var _ = Describe("PaymentSuccess", func() {
	var state *states.PaymentSuccess

	BeforeEach(func() {
		state = &states.PaymentSuccess{
			Info: states.PaymentInfo{Amount: 25.00, Method: states.MethodDebit},
			Result: states.EMVResult{
				TransactionID:     "tx-1",
				AuthorizationCode: "auth-1",
				Timestamp:         "2026-08-23T10:00:00Z",
			},
		}
	})

	It("resets to a fresh AwaitingInfo", func() {
		transition, err := state.Apply(states.Reset{})
		Expect(err).NotTo(HaveOccurred())
		Expect(transition.NextType).To(Equal(fsm.StateAwaitingInfo))

		next, ok := transition.Next.(*states.AwaitingInfo)
		Expect(ok).To(BeTrue())
		Expect(next.Amount).To(BeNil())
		Expect(next.Method).To(BeNil())
	})

	It("rejects everything but Reset", func() {
		_, err := state.Apply(states.ProcessPayment{})
		Expect(fsm.IsIncompatibleAction(err)).To(BeTrue())

		_, err = state.Apply(states.ConfirmInfo{})
		Expect(fsm.IsIncompatibleAction(err)).To(BeTrue())
	})

	It("describes the completed payment", func() {
		Expect(state.Description()).To(Equal("payment completed - id: tx-1, code: auth-1, amount: 25.00"))
	})
})

var _ = Describe("NewRegistry", func() {
	It("wires all three payment states", func() {
		registry, err := states.NewRegistry()
		Expect(err).NotTo(HaveOccurred())
		Expect(registry.Len()).To(Equal(3))

		for _, tag := range []fsm.StateType{fsm.StateAwaitingInfo, fsm.StateEMVPayment, fsm.StatePaymentSuccess} {
			_, ok := registry.Lookup(tag)
			Expect(ok).To(BeTrue(), "missing entry for %s", tag)
		}
	})

	It("reports a tag/value mismatch through the dispatch function", func() {
		registry, err := states.NewRegistry()
		Expect(err).NotTo(HaveOccurred())

		dispatch, ok := registry.Lookup(fsm.StateAwaitingInfo)
		Expect(ok).To(BeTrue())

		_, err = dispatch(&states.EMVPayment{}, states.SetAmount{Amount: 1})
		Expect(fsm.IsStateTypeMismatch(err)).To(BeTrue())
	})
})
