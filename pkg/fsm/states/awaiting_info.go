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

package states

import (
	"fmt"

	"github.com/united-manufacturing-hub/payment-core/pkg/fsm"
)

// Actions accepted by AwaitingInfo.
type (
	// SetAmount sets the payment amount. Rejected if not positive.
	SetAmount struct {
		Amount float64
	}

	// SetPaymentMethod selects the payment method.
	SetPaymentMethod struct {
		Method PaymentMethod
	}

	// ConfirmInfo confirms the collected information and starts the payment.
	ConfirmInfo struct{}
)

// AwaitingInfo is the initial state, collecting amount and method before a
// payment can start. Both fields are unset until provided.
type AwaitingInfo struct {
	Amount *float64
	Method *PaymentMethod
}

// NewAwaitingInfo returns a fresh, empty AwaitingInfo.
func NewAwaitingInfo() *AwaitingInfo {
	return &AwaitingInfo{}
}

// Apply executes one action. On ConfirmInfo it constructs the EMVPayment
// successor itself; the runtime only stores what is returned here.
func (s *AwaitingInfo) Apply(action any) (*fsm.Transition, error) {
	switch a := action.(type) {
	case SetAmount:
		if a.Amount <= 0 {
			return nil, &fsm.ValidationError{Field: "amount", Reason: "must be greater than zero"}
		}

		amount := a.Amount
		s.Amount = &amount

		return nil, nil

	case SetPaymentMethod:
		if !a.Method.Valid() {
			return nil, &fsm.ValidationError{Field: "method", Reason: fmt.Sprintf("unknown payment method %q", a.Method)}
		}

		method := a.Method
		s.Method = &method

		return nil, nil

	case ConfirmInfo:
		if s.Amount == nil {
			return nil, &fsm.PreconditionError{Reason: "amount not set"}
		}

		if s.Method == nil {
			return nil, &fsm.PreconditionError{Reason: "payment method not set"}
		}

		next := &EMVPayment{
			Info: PaymentInfo{Amount: *s.Amount, Method: *s.Method},
		}

		return &fsm.Transition{NextType: fsm.StateEMVPayment, Next: next}, nil

	default:
		return nil, fmt.Errorf("%w: %T is not an AwaitingInfo action", fsm.ErrIncompatibleAction, action)
	}
}

// Description returns a human-readable summary for the host.
func (s *AwaitingInfo) Description() string {
	if s.Amount != nil && s.Method != nil {
		return fmt.Sprintf("awaiting confirmation: %.2f (%s)", *s.Amount, *s.Method)
	}

	return "awaiting payment information"
}
